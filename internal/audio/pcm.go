package audio

import (
	"encoding/binary"
	"time"
)

// FullScale maps a float sample of 1.0 to the int16 range.
const FullScale = 32767

// PCMBuffer is mono signed 16-bit audio.
type PCMBuffer struct {
	Samples    []int16
	SampleRate int
}

// Duration returns the playing time of the buffer.
func (b *PCMBuffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(b.Samples)) * time.Second / time.Duration(b.SampleRate)
}

// Bytes returns the samples as s16le.
func (b *PCMBuffer) Bytes() []byte {
	return Int16ToBytes(b.Samples)
}

// Quantize clips x to [-1, 1] and scales it to int16, truncating toward zero.
// The scale is applied in float32 to match the reference renderer.
func Quantize(x float64) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}
	return int16(float32(x) * FullScale)
}

// quantizeInto writes Quantize(src[i]) into dst[i].
func quantizeInto(dst []int16, src []float64) {
	for i, x := range src {
		dst[i] = Quantize(x)
	}
}

// Int16ToBytes converts int16 samples to s16le byte slice.
func Int16ToBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}

// BytesToInt16 converts s16le byte slice to int16 samples.
func BytesToInt16(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return samples
}
