package midiexport

import (
	"bytes"
	"errors"
	"fmt"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	ticksPerQuarter = smf.MetricTicks(480)
	// noteTicks is the length of every exported note: half a beat.
	noteTicks = uint32(ticksPerQuarter) / 2
	velocity  = 90
	channel   = 0

	restSymbol = "REST"
)

// keySigCMajor is the key signature meta event with no sharps or flats.
var keySigCMajor = []byte{0xFF, 0x59, 0x02, 0x00, 0x00}

var ErrInvalidTempo = errors.New("tempo must be positive")

// Export writes symbols as a single-track Standard MIDI File at tempoBPM in
// 4/4 with no key signature alterations. Each playable symbol becomes one
// half-beat note directly after the previous one; rests, empty and
// unparseable symbols are skipped.
func Export(symbols []string, tempoBPM int) ([]byte, error) {
	if tempoBPM <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTempo, tempoBPM)
	}

	s := smf.New()
	s.TimeFormat = ticksPerQuarter

	var track smf.Track
	track.Add(0, smf.MetaTrackSequenceName("melodygen"))
	track.Add(0, smf.MetaTempo(float64(tempoBPM)))
	track.Add(0, smf.MetaMeter(4, 4))
	track.Add(0, keySigCMajor)

	for _, sym := range symbols {
		key, ok := ParseNote(sym)
		if !ok {
			continue
		}
		track.Add(0, midi.NoteOn(channel, key, velocity))
		track.Add(noteTicks, midi.NoteOff(channel, key))
	}
	track.Close(0)

	s.Add(track)

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI file: %w", err)
	}
	return buf.Bytes(), nil
}

// CountNotes reports how many symbols Export would turn into notes.
func CountNotes(symbols []string) int {
	n := 0
	for _, sym := range symbols {
		if _, ok := ParseNote(sym); ok {
			n++
		}
	}
	return n
}
