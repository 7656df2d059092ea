// internal/audio/pcm.go
package audio

import (
	"encoding/binary"
	"math"
)

// bytesToFloat32 decodes little-endian F32 frames. Trailing partial samples are dropped.
func bytesToFloat32(data []byte) []float32 {
	samples := make([]float32, len(data)/4)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return samples
}

// putFloat32 encodes samples into dst as little-endian F32 and returns the
// number of samples written.
func putFloat32(dst []byte, samples []float32) int {
	n := min(len(dst)/4, len(samples))
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(samples[i]))
	}
	return n
}
