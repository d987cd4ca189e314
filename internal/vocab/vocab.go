package vocab

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
)

// DefaultSymbol is emitted for any id the vocabulary cannot resolve.
const DefaultSymbol = "C4"

// RestSymbol marks a beat with no pitched note.
const RestSymbol = "REST"

var ErrInvalidVocabulary = errors.New("invalid vocabulary")

// Vocabulary maps token ids 0..Size()-1 to note symbols. It is immutable after
// construction and safe to share between concurrent generations.
type Vocabulary struct {
	symbols        []string
	sequenceLength int
	metadata       map[string]any
	fingerprint    string
}

// New builds a vocabulary where symbols[i] is the symbol for id i.
func New(symbols []string, sequenceLength int) (*Vocabulary, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: no symbols", ErrInvalidVocabulary)
	}
	if sequenceLength <= 0 {
		return nil, fmt.Errorf("%w: sequence length %d", ErrInvalidVocabulary, sequenceLength)
	}

	seen := make(map[string]int, len(symbols))
	for id, s := range symbols {
		if prev, ok := seen[s]; ok {
			return nil, fmt.Errorf("%w: symbol %q mapped by ids %d and %d", ErrInvalidVocabulary, s, prev, id)
		}
		seen[s] = id
	}

	owned := make([]string, len(symbols))
	copy(owned, symbols)

	h := sha256.New()
	fmt.Fprintf(h, "%d\n", sequenceLength)
	for _, s := range owned {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}

	return &Vocabulary{
		symbols:        owned,
		sequenceLength: sequenceLength,
		metadata:       map[string]any{},
		fingerprint:    hex.EncodeToString(h.Sum(nil))[:16],
	}, nil
}

// Lookup resolves id to its symbol. Ids outside the vocabulary resolve to
// DefaultSymbol with id 0 and ok=false.
func (v *Vocabulary) Lookup(id int) (symbol string, resolved int, ok bool) {
	if id < 0 || id >= len(v.symbols) {
		return DefaultSymbol, 0, false
	}
	return v.symbols[id], id, true
}

// Size is the number of token ids.
func (v *Vocabulary) Size() int { return len(v.symbols) }

// SequenceLength is the context window length the predictor expects.
func (v *Vocabulary) SequenceLength() int { return v.sequenceLength }

// Metadata returns the model metadata loaded alongside the mappings.
func (v *Vocabulary) Metadata() map[string]any {
	out := make(map[string]any, len(v.metadata))
	for k, val := range v.metadata {
		out[k] = val
	}
	return out
}

// Fingerprint identifies the mapping contents; it changes whenever a symbol or
// the sequence length changes.
func (v *Vocabulary) Fingerprint() string { return v.fingerprint }

type mappingsFile struct {
	IntToNote      map[string]string `json:"int_to_note"`
	SequenceLength int               `json:"sequence_length"`
}

// Load reads the note mappings and (optionally) the model metadata from disk.
// Keys of int_to_note are JSON strings holding integer ids; they must cover
// 0..n-1 exactly.
func Load(mappingsPath, metadataPath string) (*Vocabulary, error) {
	raw, err := os.ReadFile(mappingsPath)
	if err != nil {
		return nil, fmt.Errorf("read mappings: %w", err)
	}

	var mf mappingsFile
	if err := json.Unmarshal(raw, &mf); err != nil {
		return nil, fmt.Errorf("decode mappings: %w", err)
	}

	symbols := make([]string, len(mf.IntToNote))
	filled := make([]bool, len(mf.IntToNote))
	for key, sym := range mf.IntToNote {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("%w: non-integer id %q", ErrInvalidVocabulary, key)
		}
		if id < 0 || id >= len(symbols) || filled[id] {
			return nil, fmt.Errorf("%w: id %d out of range or repeated", ErrInvalidVocabulary, id)
		}
		symbols[id] = sym
		filled[id] = true
	}

	v, err := New(symbols, mf.SequenceLength)
	if err != nil {
		return nil, err
	}

	if metadataPath == "" {
		return v, nil
	}
	meta, err := os.ReadFile(metadataPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return v, nil
		}
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	if err := json.Unmarshal(meta, &v.metadata); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return v, nil
}
