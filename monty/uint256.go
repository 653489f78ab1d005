package monty

import (
	"github.com/holiman/uint256"
)

// NewIntFromUint256 carries a 256-bit integer into the domain. It exists for
// callers whose values live in the EVM-style fixed-width representation.
func NewIntFromUint256(params *Params, v *uint256.Int) (*Int, error) {
	return NewInt(params, v.ToBig(), true)
}

// Uint256 returns the logical value as a uint256.Int. The value is always
// below p, so this can only fail, with ErrUint256Range, when the modulus
// itself exceeds 256 bits.
func (x *Int) Uint256() (*uint256.Int, error) {
	u, overflow := uint256.FromBig(x.Value())
	if overflow {
		return nil, ErrUint256Range
	}
	return u, nil
}
