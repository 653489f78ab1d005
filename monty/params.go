// Package monty implements Montgomery-domain modular arithmetic against a
// fixed odd modulus.
//
// A value x is held as its Montgomery representation x*R mod p, where
// R = 2^(pWords*wordBits) is the smallest word-aligned power of two covering
// p. Products of representations are reduced with REDC, which replaces the
// division by p in every multiplication with shifts and single-word
// multiplies. That trade is what makes repeated multiplication against one
// modulus (RSA, DSA, DH exponentiation) fast: the only divisions happen once,
// at parameter setup.
//
// Params carries the per-modulus constants and is immutable and safe for
// concurrent use once constructed. Int is a single value in the domain;
// it is cheap to create many Ints sharing one Params.
package monty

import (
	"errors"
	"math/big"
	"math/bits"
)

// Errors reported by the engine. All are detected synchronously at the
// operation that discovers them; none are retried internally.
var (
	ErrInvalidModulus    = errors.New("monty: modulus must be odd and greater than one")
	ErrMismatchedModulus = errors.New("monty: values belong to different Montgomery domains")
	ErrNotInvertible     = errors.New("monty: value shares a factor with the modulus")
	ErrMalformedRepr     = errors.New("monty: representation outside [0, p)")
	ErrNegativeExponent  = errors.New("monty: exponent must be non-negative")
	ErrUint256Range      = errors.New("monty: value does not fit in 256 bits")
)

// Reducer reduces an arbitrary-precision integer modulo a fixed modulus.
// It is consumed only during parameter construction; the multiplication
// path never divides by p. *modred.Reducer satisfies it.
type Reducer interface {
	Reduce(x *big.Int) *big.Int
}

// Params holds the precomputed constants for REDC-based arithmetic modulo a
// fixed odd modulus p. One instance is built per modulus and shared,
// read-only, by every Int in that domain.
type Params struct {
	p      *big.Int
	pWords int        // words covering p; R = 2^(pWords*wordBits)
	pDash  big.Word   // -p^-1 mod 2^wordBits, the REDC multiplier
	pPad   []big.Word // p zero-padded to pWords+1 words, for the final subtraction
	r1     *big.Int   // R   mod p: Montgomery form of 1
	r2     *big.Int   // R^2 mod p: domain-entry multiplier
	r3     *big.Int   // R^3 mod p: re-enters the domain after inversion
}

// NewParams precomputes the Montgomery constants for the odd modulus p > 1.
// The reducer must already be configured for p; construction is the only
// place it is used, so a division-based reducer costs nothing per
// multiplication.
func NewParams(p *big.Int, red Reducer) (*Params, error) {
	if p.Sign() <= 0 || p.Bit(0) == 0 || p.BitLen() < 2 {
		return nil, ErrInvalidModulus
	}
	mp := &Params{
		p:      new(big.Int).Set(p),
		pWords: wordsFor(p.BitLen()),
	}
	mp.pDash = negInverseWord(mp.p.Bits()[0])
	mp.pPad = make([]big.Word, mp.pWords+1)
	copyWords(mp.pPad, mp.p)

	// R itself is never materialized beyond this shift; every later use of
	// it moves through REDC.
	r := new(big.Int).Lsh(big.NewInt(1), uint(mp.pWords)*wordBits)
	mp.r1 = red.Reduce(r)
	mp.r2 = red.Reduce(new(big.Int).Mul(mp.r1, mp.r1))
	mp.r3 = red.Reduce(new(big.Int).Mul(mp.r1, mp.r2))
	return mp, nil
}

// negInverseWord returns w' with w*w' == -1 mod 2^wordBits, for odd w.
// Newton-Raphson doubling: x <- x*(2 - w*x) doubles the number of correct
// low bits per round, and an odd w is its own inverse mod 8, so five rounds
// cover both 32- and 64-bit words.
func negInverseWord(w big.Word) big.Word {
	x := w
	for i := 0; i < 5; i++ {
		x *= 2 - w*x
	}
	return -x
}

// P returns a copy of the modulus.
func (mp *Params) P() *big.Int { return new(big.Int).Set(mp.p) }

// R1 returns a copy of R mod p, the Montgomery form of 1.
func (mp *Params) R1() *big.Int { return new(big.Int).Set(mp.r1) }

// R2 returns a copy of R^2 mod p.
func (mp *Params) R2() *big.Int { return new(big.Int).Set(mp.r2) }

// R3 returns a copy of R^3 mod p.
func (mp *Params) R3() *big.Int { return new(big.Int).Set(mp.r3) }

// PDash returns the REDC reduction constant -p^-1 mod 2^wordBits.
func (mp *Params) PDash() big.Word { return mp.pDash }

// PWords returns the number of machine words covering p.
func (mp *Params) PWords() int { return mp.pWords }

// Bytes returns the byte length of the modulus; Serialize pads to it.
func (mp *Params) Bytes() int { return (mp.p.BitLen() + 7) / 8 }

// Redc performs Montgomery reduction: for 0 <= x < R*p it returns
// x*R^-1 mod p in [0, p). The loop runs exactly pWords iterations, carries
// propagate across the full accumulator every round, and the final
// subtraction selects its result by mask, so the operand value never shapes
// the instruction trace. Panics if x is negative or at least R^2, which can
// only be reached through misuse of the raw representation.
func (mp *Params) Redc(x *big.Int) *big.Int {
	k := mp.pWords
	if x.Sign() < 0 || len(x.Bits()) > 2*k {
		panic("monty: redc operand out of range")
	}
	z := make([]big.Word, 2*k+1)
	copyWords(z, x)
	pw := mp.p.Bits()

	for i := 0; i < k; i++ {
		// m*p added at word offset i clears the accumulator's word i;
		// the word-aligned shift is implicit in indexing from i upward.
		m := z[i] * mp.pDash
		c := addMulVVW(z[i:i+k], pw, m)
		for j := i + k; j < len(z); j++ {
			s, cc := bits.Add(uint(z[j]), uint(c), 0)
			z[j] = big.Word(s)
			c = big.Word(cc)
		}
	}

	// z >> (k*wordBits) is below 2p; one masked subtraction canonicalizes.
	a := z[k:]
	t := make([]big.Word, k+1)
	borrow := subVV(t, a, mp.pPad)
	condAssign(t, a, wordMask(borrow))
	return new(big.Int).SetBits(t[:k])
}

// Mul returns redc(x*y). For x and y already in Montgomery form this is the
// Montgomery product: redc((aR)(bR)) = abR mod p.
func (mp *Params) Mul(x, y *big.Int) *big.Int {
	return mp.Redc(new(big.Int).Mul(x, y))
}

// Sqr returns redc(x*x).
func (mp *Params) Sqr(x *big.Int) *big.Int {
	return mp.Redc(new(big.Int).Mul(x, x))
}

// InvModP inverts the logical value held by the Montgomery representation x
// and returns the result in Montgomery form. With x = aR the extended-Euclid
// inverse is a^-1 * R^-1, and a single Montgomery multiply by R^3 restores
// the domain: redc(a^-1 R^-1 * R^3) = a^-1 R. Fails with ErrNotInvertible
// when gcd(x, p) != 1; gcd(R, p) = 1, so that condition is exactly
// gcd(a, p) != 1.
func (mp *Params) InvModP(x *big.Int) (*big.Int, error) {
	inv := new(big.Int).ModInverse(x, mp.p)
	if inv == nil {
		return nil, ErrNotInvertible
	}
	return mp.Mul(inv, mp.r3), nil
}

// addMod returns x + y mod p for canonical x, y in [0, p). The sum is built
// over pWords+1 words and canonicalized with a masked subtraction.
func (mp *Params) addMod(x, y *big.Int) *big.Int {
	k := mp.pWords
	a := make([]big.Word, k+1)
	b := make([]big.Word, k+1)
	t := make([]big.Word, k+1)
	copyWords(a, x)
	copyWords(b, y)
	addVV(a, a, b)
	mp.condSubWords(a, t)
	return new(big.Int).SetBits(a[:k])
}

// subMod returns x - y mod p for canonical x, y in [0, p). An underflowed
// difference has p added back; the choice is made by mask, and the wrapped
// 2^(k*wordBits) excess cancels against the dropped carry.
func (mp *Params) subMod(x, y *big.Int) *big.Int {
	k := mp.pWords
	a := make([]big.Word, k)
	b := make([]big.Word, k)
	t := make([]big.Word, k)
	copyWords(a, x)
	copyWords(b, y)
	borrow := subVV(a, a, b)
	addVV(t, a, mp.pPad[:k])
	condAssign(a, t, wordMask(borrow))
	return new(big.Int).SetBits(a)
}

// condSubWords replaces a with a-p when a >= p, selecting by mask.
// a and the scratch t each hold pWords+1 words; a must be below 2p.
func (mp *Params) condSubWords(a, t []big.Word) {
	borrow := subVV(t, a, mp.pPad)
	condAssign(a, t, ^wordMask(borrow))
}
