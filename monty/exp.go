package monty

import "math/big"

// Exp computes base^e in the Montgomery domain using fixed-window
// exponentiation. Every window lookup scans the whole table with a masked
// accumulate, and zero windows multiply by the identity entry, so the
// exponent selects neither the memory touched nor the number of multiplies.
// e must be non-negative; e = 0 yields one.
func Exp(params *Params, base *Int, e *big.Int) (*Int, error) {
	if base.params != params {
		return nil, ErrMismatchedModulus
	}
	if e.Sign() < 0 {
		return nil, ErrNegativeExponent
	}
	if e.Sign() == 0 {
		return One(params), nil
	}

	k := params.pWords
	w := windowBits(e.BitLen())
	tlen := 1 << w

	// table[i] holds the representation of base^i, padded to the modulus
	// width so the masked scan reads a fixed shape.
	table := make([][]big.Word, tlen)
	cur := One(params)
	for i := 0; i < tlen; i++ {
		table[i] = make([]big.Word, k)
		copyWords(table[i], cur.v)
		if i+1 < tlen {
			if err := cur.MulAssign(base); err != nil {
				return nil, err
			}
		}
	}

	sel := make([]big.Word, k)
	windows := (e.BitLen() + w - 1) / w
	r := One(params)
	for wi := windows - 1; wi >= 0; wi-- {
		if wi != windows-1 {
			for i := 0; i < w; i++ {
				r.SquareThis()
			}
		}
		idx := windowAt(e, wi, w)
		for i := range sel {
			sel[i] = 0
		}
		for i := 0; i < tlen; i++ {
			mask := eqMask(uint(i), idx)
			for j := 0; j < k; j++ {
				sel[j] |= table[i][j] & mask
			}
		}
		m := &Int{params: params, v: new(big.Int).SetBits(cloneWords(sel))}
		if err := r.MulAssign(m); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// windowAt extracts window wi (w bits wide, little-endian window order) of e.
// Bits past the top of e read as zero, which truncates the leading window.
func windowAt(e *big.Int, wi, w int) uint {
	var idx uint
	for b := w - 1; b >= 0; b-- {
		idx = idx<<1 | uint(e.Bit(wi*w+b))
	}
	return idx
}

// windowBits picks the window width from the exponent length. Wider windows
// trade table setup and scan cost for fewer multiplies, so short exponents
// stay narrow.
func windowBits(expBits int) int {
	switch {
	case expBits > 768:
		return 4
	case expBits > 256:
		return 3
	case expBits > 64:
		return 2
	default:
		return 1
	}
}
