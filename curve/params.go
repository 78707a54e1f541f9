package curve

import (
	"fmt"

	"ecgroup/modarith"

	"github.com/pkg/errors"
)

var (
	// ErrSingular is returned by Validate when 4a³ + 27b² ≡ 0 (mod m).
	ErrSingular = errors.New("singular curve")

	// ErrCompositeModulus is returned by Validate when m is not prime.
	ErrCompositeModulus = errors.New("modulus is not prime")

	// ErrUnsupportedScalar is returned for negative scalar multipliers.
	ErrUnsupportedScalar = errors.New("unsupported scalar")

	// ErrNotOnCurve is returned when a point fails the curve equation.
	ErrNotOnCurve = errors.New("point is not on the curve")
)

// Params describes y² = x³ + Ax + B over the integers mod M.
//
// The group law is only meaningful when M is prime and the curve is
// non-singular. Operations do not check this; call Validate first when the
// parameters come from user input.
type Params struct {
	A int64 `json:"a" yaml:"a" mapstructure:"a"`
	B int64 `json:"b" yaml:"b" mapstructure:"b"`
	M int64 `json:"m" yaml:"m" mapstructure:"m"`
}

func (c Params) String() string {
	return fmt.Sprintf("y^2 = x^3 + %dx + %d (mod %d)", c.A, c.B, c.M)
}

// Discriminant returns 4a³ + 27b² mod m.
func (c Params) Discriminant() (int64, error) {
	o := ops{m: c.M}
	a3 := o.mul(o.mul(c.A, c.A), c.A)
	b2 := o.mul(c.B, c.B)
	d := o.add(o.mul(4, a3), o.mul(27, b2))
	return d, o.err
}

// Validate checks the preconditions of the group law: a prime modulus and a
// non-singular curve.
func (c Params) Validate() error {
	if c.M < 2 {
		return errors.Wrapf(modarith.ErrInvalidModulus, "m = %d", c.M)
	}
	if !modarith.IsProbablePrime(c.M) {
		return errors.Wrapf(ErrCompositeModulus, "m = %d", c.M)
	}
	d, err := c.Discriminant()
	if err != nil {
		return errors.WithMessage(err, "discriminant")
	}
	if d == 0 {
		return errors.Wrapf(ErrSingular, "4a^3 + 27b^2 ≡ 0 (mod %d)", c.M)
	}
	return nil
}

// RHS returns x³ + ax + b mod m.
func (c Params) RHS(x int64) (int64, error) {
	o := ops{m: c.M}
	x3 := o.mul(o.mul(x, x), x)
	v := o.add(o.add(x3, o.mul(c.A, x)), c.B)
	return v, o.err
}

// Satisfies reports whether (y² − (x³ + ax + b)) mod m == 0.
func (c Params) Satisfies(x, y int64) (bool, error) {
	o := ops{m: c.M}
	rhs, err := c.RHS(x)
	if err != nil {
		return false, err
	}
	v := o.sub(o.mul(y, y), rhs)
	if o.err != nil {
		return false, o.err
	}
	return v == 0, nil
}

// Contains reports whether p is a point of the curve group. Affine
// coordinates must lie in [0, m).
func (c Params) Contains(p Point) (bool, error) {
	x, y, ok := p.Affine()
	if !ok {
		return true, nil
	}
	if x < 0 || x >= c.M || y < 0 || y >= c.M {
		return false, nil
	}
	return c.Satisfies(x, y)
}

// ops chains modular operations and keeps the first error.
type ops struct {
	m   int64
	err error
}

func (o *ops) add(a, b int64) int64 {
	if o.err != nil {
		return 0
	}
	v, err := modarith.Add(a, b, o.m)
	o.err = err
	return v
}

func (o *ops) sub(a, b int64) int64 {
	if o.err != nil {
		return 0
	}
	v, err := modarith.Sub(a, b, o.m)
	o.err = err
	return v
}

func (o *ops) mul(a, b int64) int64 {
	if o.err != nil {
		return 0
	}
	v, err := modarith.Mul(a, b, o.m)
	o.err = err
	return v
}

func (o *ops) inv(a int64) int64 {
	if o.err != nil {
		return 0
	}
	v, err := modarith.Inverse(a, o.m)
	o.err = err
	return v
}
