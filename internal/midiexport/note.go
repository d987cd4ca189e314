package midiexport

import (
	"strconv"
	"strings"
)

var pitchClasses = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// ParseNote converts a note name such as "C4", "F#3", "B-2" or "Eb5" to a
// MIDI key number. A missing octave means octave 4. Rests, chords and other
// malformed names report ok=false.
func ParseNote(symbol string) (key uint8, ok bool) {
	s := strings.TrimSpace(symbol)
	if s == "" || strings.EqualFold(s, restSymbol) {
		return 0, false
	}

	pc, ok := pitchClasses[strings.ToUpper(s[:1])[0]]
	if !ok {
		return 0, false
	}
	s = s[1:]

	i := 0
	for ; i < len(s); i++ {
		if s[i] == '#' {
			pc++
		} else if s[i] == '-' || s[i] == 'b' {
			pc--
		} else {
			break
		}
	}
	s = s[i:]

	oct := 4
	if s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return 0, false
		}
		oct = n
	}

	midi := (oct+1)*12 + pc
	if midi < 0 || midi > 127 {
		return 0, false
	}
	return uint8(midi), true
}
