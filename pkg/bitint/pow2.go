// SPDX-License-Identifier: MIT
/*
Package bitint holds the power-of-two helpers used to size FFT buffers.

Both functions are constant time and never allocate, so they are safe to call
while preparing a block on the audio thread.

	fftSize := bitint.NextPowerOfTwo(blockLength) // 1000 -> 1024
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of two >= size, and 1 for
// size <= 0. Subtracting one first keeps exact powers of two unchanged.
func NextPowerOfTwo(size int) int {
	if size <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
