package monty

import (
	"math/big"
	"math/bits"
)

// wordBits is the bit width of the big-integer primitive's machine word.
// All REDC sizing derives from it; nothing below assumes 32 or 64 directly.
const wordBits = bits.UintSize

// wordsFor returns the number of machine words needed to hold bitLen bits.
func wordsFor(bitLen int) int {
	return (bitLen + wordBits - 1) / wordBits
}

// copyWords writes the words of x into z, zero-padding up to len(z).
// The caller guarantees x fits in len(z) words.
func copyWords(z []big.Word, x *big.Int) {
	n := copy(z, x.Bits())
	for i := n; i < len(z); i++ {
		z[i] = 0
	}
}

// cloneWords returns a fresh copy of w, safe to hand to big.Int.SetBits.
func cloneWords(w []big.Word) []big.Word {
	return append([]big.Word(nil), w...)
}

// addVV computes z = x + y and returns the outgoing carry.
// All three slices have the same length.
func addVV(z, x, y []big.Word) big.Word {
	var carry uint
	for i := range z {
		s, c := bits.Add(uint(x[i]), uint(y[i]), carry)
		z[i] = big.Word(s)
		carry = c
	}
	return big.Word(carry)
}

// subVV computes z = x - y and returns the final borrow.
// All three slices have the same length.
func subVV(z, x, y []big.Word) big.Word {
	var borrow uint
	for i := range z {
		d, b := bits.Sub(uint(x[i]), uint(y[i]), borrow)
		z[i] = big.Word(d)
		borrow = b
	}
	return big.Word(borrow)
}

// addMulVVW adds y*x into z word-wise and returns the outgoing carry,
// mirroring the inner primitive of math/big. len(z) == len(x); the sum
// z[i] + x[i]*y + carry always fits two words, so the carry chain cannot
// overflow.
func addMulVVW(z, x []big.Word, y big.Word) big.Word {
	var carry big.Word
	for i := range x {
		hi, lo := bits.Mul(uint(x[i]), uint(y))
		lo, c := bits.Add(lo, uint(z[i]), 0)
		hi += c
		lo, c = bits.Add(lo, uint(carry), 0)
		z[i] = big.Word(lo)
		carry = big.Word(hi) + big.Word(c)
	}
	return carry
}

// shl1VV shifts a left by one bit in place across all len(a) words.
// The top word receives the shifted-out bit.
func shl1VV(a []big.Word) {
	var c big.Word
	for i := range a {
		w := a[i]
		a[i] = w<<1 | c
		c = w >> (wordBits - 1)
	}
}

// wordMask expands b in {0, 1} to an all-zeros or all-ones word.
func wordMask(b big.Word) big.Word {
	return -b
}

// eqMask returns an all-ones word when a == b, zero otherwise, without
// branching on the comparison.
func eqMask(a, b uint) big.Word {
	diff := a ^ b
	ne := big.Word((diff | -diff) >> (bits.UintSize - 1)) // 1 when a != b
	return wordMask(1 ^ ne)
}

// condAssign copies src into z wherever mask is all ones. mask must be
// all-zeros or all-ones; the copy runs over every word regardless.
func condAssign(z, src []big.Word, mask big.Word) {
	for i := range z {
		z[i] = (z[i] &^ mask) | (src[i] & mask)
	}
}

// wsWords returns ws resized to n words, allocating only when the caller
// supplied too little capacity. Exponentiation loops pass the same slice on
// every call and never reallocate.
func wsWords(ws []big.Word, n int) []big.Word {
	if cap(ws) < n {
		return make([]big.Word, n)
	}
	return ws[:n]
}
