package distance

import "math/bits"

// Hamming returns the number of differing bits between two 64-bit values.
// For perceptual image hashes this is the standard similarity metric.
func Hamming(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}
