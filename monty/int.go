package monty

import (
	"math/big"

	gethmath "github.com/ethereum/go-ethereum/common/math"
)

// Int is a value held in Montgomery representation: for logical value a it
// stores a*R mod p against a shared, immutable Params. Every public
// operation leaves the representation canonical in [0, p).
//
// Binary operations require both operands to share the same Params instance
// and fail with ErrMismatchedModulus otherwise; reducing against the wrong
// modulus would be a silent correctness bug, so it is never tolerated.
//
// An Int is not safe for concurrent mutation. The in-place operators
// (AddAssign, MulAssign, SquareThis, MulBy2..8) need exclusive access for
// the duration of the call; the shared Params needs no synchronization.
type Int struct {
	params *Params
	v      *big.Int
}

// NewInt wraps v against params. When redcNeeded is true, v is an ordinary
// integer and is carried into the domain by a Montgomery multiply with R^2
// (values outside [0, p) are reduced first; that division happens at
// construction, not on the arithmetic path). When false, the caller asserts
// v is already a canonical Montgomery representation, and anything outside
// [0, p) is rejected with ErrMalformedRepr rather than allowed to corrupt
// later arithmetic.
func NewInt(params *Params, v *big.Int, redcNeeded bool) (*Int, error) {
	if !redcNeeded {
		if v.Sign() < 0 || v.Cmp(params.p) >= 0 {
			return nil, ErrMalformedRepr
		}
		return &Int{params: params, v: new(big.Int).Set(v)}, nil
	}
	t := v
	if v.Sign() < 0 || v.Cmp(params.p) >= 0 {
		t = new(big.Int).Mod(v, params.p)
	}
	return &Int{params: params, v: params.Mul(t, params.r2)}, nil
}

// NewIntFromBytes decodes a big-endian integer and carries it into the
// domain. It is the inverse of Serialize.
func NewIntFromBytes(params *Params, b []byte) (*Int, error) {
	return NewInt(params, new(big.Int).SetBytes(b), true)
}

// Zero returns the additive identity of the domain.
func Zero(params *Params) *Int {
	return &Int{params: params, v: new(big.Int)}
}

// One returns the multiplicative identity of the domain (representation R1).
func One(params *Params) *Int {
	return &Int{params: params, v: new(big.Int).Set(params.r1)}
}

// Params returns the shared parameter set this value belongs to.
func (x *Int) Params() *Params { return x.params }

// Repr returns a copy of the raw Montgomery representation. Callers that
// want the logical value use Value; the raw form must never be serialized.
func (x *Int) Repr() *big.Int { return new(big.Int).Set(x.v) }

// Clone returns an independent copy sharing the same Params.
func (x *Int) Clone() *Int {
	return &Int{params: x.params, v: new(big.Int).Set(x.v)}
}

// Value leaves the domain: one REDC pass over the stored representation
// xR yields the ordinary integer x in [0, p).
func (x *Int) Value() *big.Int {
	return x.params.Redc(x.v)
}

// Serialize returns the big-endian encoding of the logical value, padded to
// the modulus byte length.
func (x *Int) Serialize() []byte {
	return gethmath.PaddedBigBytes(x.Value(), x.params.Bytes())
}

// IsZero reports whether the value is zero (representation zero).
func (x *Int) IsZero() bool { return x.v.Sign() == 0 }

// IsOne reports whether the value is one, whose representation is R1.
func (x *Int) IsOne() bool { return x.v.Cmp(x.params.r1) == 0 }

// Equal reports whether x and y hold the same representation in the same
// domain. The domain map is injective on canonical representations, so
// comparing them compares the logical values.
func (x *Int) Equal(y *Int) bool {
	return x.params == y.params && x.v.Cmp(y.v) == 0
}

// FixSize checks the stored representation still fits the modulus width.
// big.Int normalizes leading zero words away, so the exact-pWords padding of
// the original representation lives in the word-level scratch; what remains
// to defend here is that no operation widened the value past pWords words.
func (x *Int) FixSize() error {
	if len(x.v.Bits()) > x.params.pWords {
		return ErrMalformedRepr
	}
	return nil
}

// Add returns x + y. Montgomery representation is linear, so ordinary
// modular addition of the representations is the domain addition.
func (x *Int) Add(y *Int) (*Int, error) {
	if x.params != y.params {
		return nil, ErrMismatchedModulus
	}
	return &Int{params: x.params, v: x.params.addMod(x.v, y.v)}, nil
}

// AddAssign sets x = x + y in place.
func (x *Int) AddAssign(y *Int) error {
	if x.params != y.params {
		return ErrMismatchedModulus
	}
	x.v = x.params.addMod(x.v, y.v)
	return nil
}

// Sub returns x - y.
func (x *Int) Sub(y *Int) (*Int, error) {
	if x.params != y.params {
		return nil, ErrMismatchedModulus
	}
	return &Int{params: x.params, v: x.params.subMod(x.v, y.v)}, nil
}

// SubAssign sets x = x - y in place.
func (x *Int) SubAssign(y *Int) error {
	if x.params != y.params {
		return ErrMismatchedModulus
	}
	x.v = x.params.subMod(x.v, y.v)
	return nil
}

// Mul returns the Montgomery product x * y.
func (x *Int) Mul(y *Int) (*Int, error) {
	if x.params != y.params {
		return nil, ErrMismatchedModulus
	}
	return &Int{params: x.params, v: x.params.Mul(x.v, y.v)}, nil
}

// MulAssign sets x = x * y in place.
func (x *Int) MulAssign(y *Int) error {
	if x.params != y.params {
		return ErrMismatchedModulus
	}
	x.v = x.params.Mul(x.v, y.v)
	return nil
}

// Square returns x^2.
func (x *Int) Square() *Int {
	return &Int{params: x.params, v: x.params.Sqr(x.v)}
}

// SquareThis sets x = x^2 in place and returns x for chaining inside
// exponentiation loops.
func (x *Int) SquareThis() *Int {
	x.v = x.params.Sqr(x.v)
	return x
}

// MultiplicativeInverse returns the inverse of the logical value, in the
// domain. Fails with ErrNotInvertible when the value shares a factor with p.
func (x *Int) MultiplicativeInverse() (*Int, error) {
	inv, err := x.params.InvModP(x.v)
	if err != nil {
		return nil, err
	}
	return &Int{params: x.params, v: inv}, nil
}

// AdditiveInverse returns -x: p minus the representation, or zero for zero.
func (x *Int) AdditiveInverse() *Int {
	if x.v.Sign() == 0 {
		return Zero(x.params)
	}
	return &Int{params: x.params, v: new(big.Int).Sub(x.params.p, x.v)}
}

// MulBy2 sets x = 2x in place: one bit shift and a masked subtraction, no
// REDC. ws is caller-owned scratch, reused across calls on the same
// goroutine; pass nil to let the method allocate. Returns x for chaining.
func (x *Int) MulBy2(ws []big.Word) *Int {
	k := x.params.pWords
	ws = wsWords(ws, 2*(k+1))
	a, t := ws[:k+1], ws[k+1:]
	copyWords(a, x.v)
	shl1VV(a)
	x.params.condSubWords(a, t)
	x.v = new(big.Int).SetBits(cloneWords(a[:k]))
	return x
}

// MulBy3 sets x = 3x in place via a doubling and one modular addition.
func (x *Int) MulBy3(ws []big.Word) *Int {
	k := x.params.pWords
	ws = wsWords(ws, 3*(k+1))
	a, b, t := ws[:k+1], ws[k+1:2*(k+1)], ws[2*(k+1):]
	copyWords(a, x.v)
	copyWords(b, x.v)
	shl1VV(a)
	x.params.condSubWords(a, t)
	addVV(a, a, b)
	x.params.condSubWords(a, t)
	x.v = new(big.Int).SetBits(cloneWords(a[:k]))
	return x
}

// MulBy4 sets x = 4x in place: two reduced doublings.
func (x *Int) MulBy4(ws []big.Word) *Int {
	k := x.params.pWords
	ws = wsWords(ws, 2*(k+1))
	a, t := ws[:k+1], ws[k+1:]
	copyWords(a, x.v)
	for i := 0; i < 2; i++ {
		shl1VV(a)
		x.params.condSubWords(a, t)
	}
	x.v = new(big.Int).SetBits(cloneWords(a[:k]))
	return x
}

// MulBy8 sets x = 8x in place: three reduced doublings.
func (x *Int) MulBy8(ws []big.Word) *Int {
	k := x.params.pWords
	ws = wsWords(ws, 2*(k+1))
	a, t := ws[:k+1], ws[k+1:]
	copyWords(a, x.v)
	for i := 0; i < 3; i++ {
		shl1VV(a)
		x.params.condSubWords(a, t)
	}
	x.v = new(big.Int).SetBits(cloneWords(a[:k]))
	return x
}
