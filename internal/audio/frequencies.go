package audio

// frequencyTable holds the fundamental of every symbol the synthesizer can
// voice, in Hz at concert pitch. Values are literal, not computed, so rendered
// audio stays bit-identical across platforms.
var frequencyTable = map[string]float64{
	"C3": 130.81, "D3": 146.83, "E3": 164.81, "F3": 174.61,
	"G3": 196.00, "A3": 220.00, "B3": 246.94,

	"C4": 261.63, "C#4": 277.18, "D4": 293.66, "D#4": 311.13,
	"E4": 329.63, "F4": 349.23, "F#4": 369.99, "G4": 392.00,
	"G#4": 415.30, "A4": 440.00, "A#4": 466.16, "B4": 493.88,

	"C5": 523.25, "D5": 587.33, "E5": 659.25, "F5": 698.46,
	"G5": 783.99, "A5": 880.00, "B5": 987.77,
}

// Frequency returns the fundamental for symbol. Rests and unknown symbols
// report ok=false and render as silence.
func Frequency(symbol string) (hz float64, ok bool) {
	hz, ok = frequencyTable[symbol]
	return hz, ok
}

// KnownSymbols lists every symbol with a table entry.
func KnownSymbols() []string {
	out := make([]string, 0, len(frequencyTable))
	for s := range frequencyTable {
		out = append(out, s)
	}
	return out
}
