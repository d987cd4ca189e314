package main

import (
	"os"

	"github.com/RenatoCabral2022/melodygen/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
