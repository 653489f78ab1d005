// Package modred implements modular reduction against a fixed positive
// modulus using Barrett's method: one division at construction buys a
// reciprocal that turns every later reduction into shifts and multiplies.
//
// The Montgomery engine consumes a Reducer only while precomputing its
// per-modulus constants, so this package is never on a multiplication path.
package modred

import (
	"errors"
	"math/big"
)

// ErrInvalidModulus is returned for a zero or negative modulus.
var ErrInvalidModulus = errors.New("modred: modulus must be positive")

// Reducer reduces arbitrary-precision integers modulo a fixed modulus p.
// It is immutable after construction and safe for concurrent use.
type Reducer struct {
	p     *big.Int
	mu    *big.Int // floor(2^(2k) / p), the Barrett reciprocal
	k     uint     // bit length of p
	bound *big.Int // 2^(2k); inputs past it fall back to big.Int division
}

// New builds a Reducer for the modulus p > 0.
func New(p *big.Int) (*Reducer, error) {
	if p.Sign() <= 0 {
		return nil, ErrInvalidModulus
	}
	k := uint(p.BitLen())
	bound := new(big.Int).Lsh(big.NewInt(1), 2*k)
	return &Reducer{
		p:     new(big.Int).Set(p),
		mu:    new(big.Int).Quo(bound, p),
		k:     k,
		bound: bound,
	}, nil
}

// P returns a copy of the modulus.
func (r *Reducer) P() *big.Int { return new(big.Int).Set(r.p) }

// Reduce returns x mod p in [0, p). Inputs below 2^(2k) take the Barrett
// path; negative or wider inputs fall back to big.Int division.
func (r *Reducer) Reduce(x *big.Int) *big.Int {
	if x.Sign() < 0 || x.Cmp(r.bound) >= 0 {
		return new(big.Int).Mod(x, r.p)
	}
	if x.Cmp(r.p) < 0 {
		return new(big.Int).Set(x)
	}
	// q approximates x/p from below by at most 2, so at most two
	// subtractions canonicalize the remainder.
	q := new(big.Int).Rsh(x, r.k-1)
	q.Mul(q, r.mu)
	q.Rsh(q, r.k+1)
	t := q.Mul(q, r.p)
	t.Sub(x, t)
	for t.Cmp(r.p) >= 0 {
		t.Sub(t, r.p)
	}
	return t
}
