package monty

import (
	"errors"
	"io"
	"math/big"
	"testing"

	"golang.org/x/crypto/sha3"

	"github.com/eth2030/modarith/modred"
)

// Test moduli spanning one word to several words. The named curve orders
// match what the exponentiation consumers of this engine actually see.
var testModuli = []struct {
	name  string
	hex   string
	prime bool
}{
	{"p97", "61", true},
	{"mersenne61", "1fffffffffffffff", true},
	{"secp256k1", "fffffffffffffffffffffffffffffffffffffffffffffffffffffffefffffc2f", true},
	{"bls12-381-r", "73eda753299d7d483339d80809a1d80553bda402fffe5bfeffffffff00000001", true},
	{"rsa512-odd", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b857", false},
}

func mustModulus(t testing.TB, hex string) *big.Int {
	t.Helper()
	p, ok := new(big.Int).SetString(hex, 16)
	if !ok {
		t.Fatalf("bad modulus literal %q", hex)
	}
	return p
}

func mustParams(t testing.TB, p *big.Int) *Params {
	t.Helper()
	red, err := modred.New(p)
	if err != nil {
		t.Fatalf("modred.New(%v): %v", p, err)
	}
	params, err := NewParams(p, red)
	if err != nil {
		t.Fatalf("NewParams(%v): %v", p, err)
	}
	return params
}

func mustEnter(t testing.TB, params *Params, v int64) *Int {
	t.Helper()
	x, err := NewInt(params, big.NewInt(v), true)
	if err != nil {
		t.Fatalf("NewInt(%d): %v", v, err)
	}
	return x
}

// testStream derives a deterministic operand stream from a seed, so
// property-test failures reproduce exactly.
func testStream(seed string) io.Reader {
	h := sha3.NewShake256()
	h.Write([]byte(seed))
	return h
}

// randBelow draws a uniform-enough value in [0, bound) from the stream.
func randBelow(t testing.TB, r io.Reader, bound *big.Int) *big.Int {
	t.Helper()
	buf := make([]byte, (bound.BitLen()+7)/8+8)
	if _, err := io.ReadFull(r, buf); err != nil {
		t.Fatalf("reading test stream: %v", err)
	}
	v := new(big.Int).SetBytes(buf)
	return v.Mod(v, bound)
}

func TestNewParamsRejectsInvalidModulus(t *testing.T) {
	red, err := modred.New(big.NewInt(97))
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range []*big.Int{
		big.NewInt(0),
		big.NewInt(-97),
		big.NewInt(1),
		big.NewInt(96), // even
	} {
		if _, err := NewParams(p, red); !errors.Is(err, ErrInvalidModulus) {
			t.Errorf("NewParams(%v) error = %v, want ErrInvalidModulus", p, err)
		}
	}
}

func TestParamsConstants(t *testing.T) {
	for _, tc := range testModuli {
		t.Run(tc.name, func(t *testing.T) {
			p := mustModulus(t, tc.hex)
			params := mustParams(t, p)

			wantWords := (p.BitLen() + wordBits - 1) / wordBits
			if params.PWords() != wantWords {
				t.Errorf("PWords() = %d, want %d", params.PWords(), wantWords)
			}

			// p * pDash == -1 mod 2^wordBits, checked in wrapping word
			// arithmetic.
			p0 := p.Bits()[0]
			if got := p0*params.PDash() + 1; got != 0 {
				t.Errorf("p*pDash+1 = %#x mod 2^%d, want 0", got, wordBits)
			}

			r := new(big.Int).Lsh(big.NewInt(1), uint(wantWords)*wordBits)
			for i, acc := range []*big.Int{params.R1(), params.R2(), params.R3()} {
				want := new(big.Int).Exp(r, big.NewInt(int64(i+1)), p)
				if acc.Cmp(want) != 0 {
					t.Errorf("R%d = %v, want %v", i+1, acc, want)
				}
				if acc.Cmp(p) >= 0 {
					t.Errorf("R%d = %v not below p", i+1, acc)
				}
			}
		})
	}
}

func TestRedcInvertsDomainEntry(t *testing.T) {
	for _, tc := range testModuli {
		t.Run(tc.name, func(t *testing.T) {
			p := mustModulus(t, tc.hex)
			params := mustParams(t, p)
			r := new(big.Int).Lsh(big.NewInt(1), uint(params.PWords())*wordBits)
			stream := testStream("redc/" + tc.name)

			for i := 0; i < 50; i++ {
				x := randBelow(t, stream, p)
				// Entering the domain via mul-by-R2 must agree with the
				// directly computed x*R mod p.
				rep := params.Mul(x, params.R2())
				want := new(big.Int).Mul(x, r)
				want.Mod(want, p)
				if rep.Cmp(want) != 0 {
					t.Fatalf("enter(%v) = %v, want %v", x, rep, want)
				}
				// One REDC pass exits the domain.
				if got := params.Redc(rep); got.Cmp(x) != 0 {
					t.Fatalf("redc(enter(%v)) = %v", x, got)
				}
			}
		})
	}
}

func TestParamsMulSqrAgainstBigInt(t *testing.T) {
	for _, tc := range testModuli {
		t.Run(tc.name, func(t *testing.T) {
			p := mustModulus(t, tc.hex)
			params := mustParams(t, p)
			stream := testStream("mulsqr/" + tc.name)

			for i := 0; i < 50; i++ {
				x := randBelow(t, stream, p)
				y := randBelow(t, stream, p)
				xr := params.Mul(x, params.R2())
				yr := params.Mul(y, params.R2())

				want := new(big.Int).Mul(x, y)
				want.Mod(want, p)
				if got := params.Redc(params.Mul(xr, yr)); got.Cmp(want) != 0 {
					t.Fatalf("mul(%v, %v) = %v, want %v", x, y, got, want)
				}

				want.Mul(x, x).Mod(want, p)
				if got := params.Redc(params.Sqr(xr)); got.Cmp(want) != 0 {
					t.Fatalf("sqr(%v) = %v, want %v", x, got, want)
				}
			}
		})
	}
}

func TestInvModP(t *testing.T) {
	p := mustModulus(t, testModuli[2].hex) // secp256k1
	params := mustParams(t, p)
	stream := testStream("invmodp")

	for i := 0; i < 30; i++ {
		x := randBelow(t, stream, p)
		if x.Sign() == 0 {
			continue
		}
		xr := params.Mul(x, params.R2())
		invr, err := params.InvModP(xr)
		if err != nil {
			t.Fatalf("InvModP(%v): %v", x, err)
		}
		prod := params.Redc(params.Mul(xr, invr))
		if prod.Cmp(big.NewInt(1)) != 0 {
			t.Fatalf("x * x^-1 = %v, want 1", prod)
		}
	}

	if _, err := params.InvModP(new(big.Int)); !errors.Is(err, ErrNotInvertible) {
		t.Errorf("InvModP(0) error = %v, want ErrNotInvertible", err)
	}
}

func TestInvModPSharedFactor(t *testing.T) {
	// 91 = 7 * 13: values sharing a factor with p have no inverse.
	params := mustParams(t, big.NewInt(91))
	seven := mustEnter(t, params, 7)
	if _, err := seven.MultiplicativeInverse(); !errors.Is(err, ErrNotInvertible) {
		t.Errorf("inverse of 7 mod 91 error = %v, want ErrNotInvertible", err)
	}
	three := mustEnter(t, params, 3)
	inv, err := three.MultiplicativeInverse()
	if err != nil {
		t.Fatalf("inverse of 3 mod 91: %v", err)
	}
	prod, err := three.Mul(inv)
	if err != nil {
		t.Fatal(err)
	}
	if !prod.IsOne() {
		t.Errorf("3 * 3^-1 = %v, want 1", prod.Value())
	}
}

func BenchmarkMontgomeryMul(b *testing.B) {
	p := mustModulus(b, testModuli[4].hex)
	params := mustParams(b, p)
	stream := testStream("bench/mul")
	x := params.Mul(randBelow(b, stream, p), params.R2())
	y := params.Mul(randBelow(b, stream, p), params.R2())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		params.Mul(x, y)
	}
}

func BenchmarkRedc(b *testing.B) {
	p := mustModulus(b, testModuli[4].hex)
	params := mustParams(b, p)
	stream := testStream("bench/redc")
	x := new(big.Int).Mul(randBelow(b, stream, p), randBelow(b, stream, p))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		params.Redc(x)
	}
}
