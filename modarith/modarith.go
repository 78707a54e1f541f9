// Package modarith implements the integer arithmetic modulo m that the curve
// group law is built on. All values are native int64; every result is reduced
// into [0, m) with Euclidean semantics, and products that would not fit in an
// int64 are reported instead of wrapping.
package modarith

import (
	"math"
	"math/big"

	"github.com/pkg/errors"
)

var (
	// ErrNonInvertible is returned when an inverse is requested for a value
	// that shares a factor with the modulus (including zero).
	ErrNonInvertible = errors.New("element is not invertible")

	// ErrOverflow is returned when an intermediate value leaves the int64 range.
	ErrOverflow = errors.New("arithmetic overflow")

	// ErrInvalidModulus is returned for moduli smaller than 2.
	ErrInvalidModulus = errors.New("invalid modulus")
)

// Mod returns a mod m in [0, m). m must be positive.
func Mod(a, m int64) int64 {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}

// Inverse returns t in [0, m) with a·t ≡ 1 (mod m), using the extended
// Euclidean algorithm.
func Inverse(a, m int64) (int64, error) {
	if m < 2 {
		return 0, errors.Wrapf(ErrInvalidModulus, "modulus %d", m)
	}
	t, newT := int64(0), int64(1)
	r, newR := m, Mod(a, m)
	for newR != 0 {
		quotient := r / newR
		t, newT = newT, t-quotient*newT
		r, newR = newR, r-quotient*newR
	}
	// r is gcd(a, m) here.
	if r != 1 {
		return 0, errors.Wrapf(ErrNonInvertible, "%d mod %d (gcd %d)", a, m, r)
	}
	if t < 0 {
		t += m
	}
	return t, nil
}

// Add returns (a + b) mod m.
func Add(a, b, m int64) (int64, error) {
	if m < 2 {
		return 0, errors.Wrapf(ErrInvalidModulus, "modulus %d", m)
	}
	a, b = Mod(a, m), Mod(b, m)
	if a > math.MaxInt64-b {
		return 0, errors.Wrapf(ErrOverflow, "%d + %d", a, b)
	}
	return Mod(a+b, m), nil
}

// Sub returns (a - b) mod m.
func Sub(a, b, m int64) (int64, error) {
	if m < 2 {
		return 0, errors.Wrapf(ErrInvalidModulus, "modulus %d", m)
	}
	// both operands are in [0, m) so the difference cannot overflow
	return Mod(Mod(a, m)-Mod(b, m), m), nil
}

// Mul returns (a · b) mod m.
func Mul(a, b, m int64) (int64, error) {
	if m < 2 {
		return 0, errors.Wrapf(ErrInvalidModulus, "modulus %d", m)
	}
	a, b = Mod(a, m), Mod(b, m)
	if a != 0 && b > math.MaxInt64/a {
		return 0, errors.Wrapf(ErrOverflow, "%d * %d", a, b)
	}
	return (a * b) % m, nil
}

// Square returns a² mod m.
func Square(a, m int64) (int64, error) {
	return Mul(a, a, m)
}

// Neg returns -a mod m.
func Neg(a, m int64) int64 {
	return Mod(-Mod(a, m), m)
}

// IsProbablePrime reports whether m is prime. It is exact for every int64.
func IsProbablePrime(m int64) bool {
	if m < 2 {
		return false
	}
	return big.NewInt(m).ProbablyPrime(20)
}
