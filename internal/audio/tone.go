package audio

import "math"

const (
	// ToneAmplitude leaves headroom below full scale.
	ToneAmplitude = 0.3
	// EnvelopeFraction of a segment spent in each of the attack and release ramps.
	EnvelopeFraction = 0.1
)

// renderTone writes an enveloped sine at frequency into dst, one sample per
// 1/sampleRate seconds starting at t=0.
func renderTone(dst []float64, frequency float64, sampleRate int) {
	n := len(dst)
	attack := int(EnvelopeFraction * float64(n))
	release := int(EnvelopeFraction * float64(n))

	for i := range dst {
		t := float64(i) / float64(sampleRate)
		dst[i] = math.Sin(2*math.Pi*frequency*t) * envelope(i, n, attack, release) * ToneAmplitude
	}
}

// envelope is the gain at sample i of an n-sample segment: a linear 0→1 ramp
// over the first attack samples, a linear 1→0 ramp over the last release
// samples, unity in between. Ramps include both endpoints, and the release
// ramp wins where the two overlap.
func envelope(i, n, attack, release int) float64 {
	if release > 0 && i >= n-release {
		return linspace(1, 0, release, i-(n-release))
	}
	if attack > 0 && i < attack {
		return linspace(0, 1, attack, i)
	}
	return 1
}

// linspace returns element k of count evenly spaced values from start to stop
// inclusive. A single-element ramp is just start.
func linspace(start, stop float64, count, k int) float64 {
	if count == 1 {
		return start
	}
	return start + (stop-start)*float64(k)/float64(count-1)
}
