package curve

import (
	"ecgroup/modarith"

	"github.com/pkg/errors"
)

// Group is the additive group interface shared by the small curves of this
// package and the reference curves used to cross-check the group laws.
type Group[P any] interface {
	Name() string
	Identity() P
	Add(p, q P) (P, error)
	Negate(p P) P
	ScalarMult(k int64, p P) (P, error)
	Equal(p, q P) bool
}

var _ Group[Point] = Params{}

func (c Params) Name() string { return c.String() }

func (c Params) Identity() Point { return Infinity() }

func (c Params) Equal(p, q Point) bool { return p.Equal(q) }

// Negate returns -p: (x, m - y) for y != 0, p itself otherwise.
func (c Params) Negate(p Point) Point {
	x, y, ok := p.Affine()
	if !ok || y == 0 {
		return p
	}
	return NewPoint(x, modarith.Neg(y, c.M))
}

// Add returns p + q under the chord-and-tangent law.
//
// Points with equal x and different y (or y = 0) are inverses and sum to the
// identity. A denominator with no inverse mod m, possible only when m is not
// prime or the curve is singular, is reported as modarith.ErrNonInvertible.
func (c Params) Add(p, q Point) (Point, error) {
	if p.IsInfinity() {
		return q, nil
	}
	if q.IsInfinity() {
		return p, nil
	}
	x1, y1 := p.x, p.y
	x2, y2 := q.x, q.y
	if x1 == x2 && (y1 != y2 || y1 == 0) {
		return Infinity(), nil
	}

	o := ops{m: c.M}
	var lambda int64
	if x1 == x2 {
		// tangent: (3x² + a) / 2y
		num := o.add(o.mul(3, o.mul(x1, x1)), c.A)
		lambda = o.mul(num, o.inv(o.mul(2, y1)))
	} else {
		// secant: (y2 - y1) / (x2 - x1)
		lambda = o.mul(o.sub(y2, y1), o.inv(o.sub(x2, x1)))
	}
	x3 := o.sub(o.sub(o.mul(lambda, lambda), x1), x2)
	y3 := o.sub(o.mul(lambda, o.sub(x1, x3)), y1)
	if o.err != nil {
		return Point{}, errors.WithMessagef(o.err, "add %s + %s", p, q)
	}
	return NewPoint(x3, y3), nil
}

// Double returns p + p.
func (c Params) Double(p Point) (Point, error) {
	return c.Add(p, p)
}

// ScalarMult returns n·p by double-and-add. n must not be negative.
func (c Params) ScalarMult(n int64, p Point) (Point, error) {
	if n < 0 {
		return Point{}, errors.Wrapf(ErrUnsupportedScalar, "negative multiplier %d", n)
	}
	var err error
	result := Infinity()
	addend := p
	for n > 0 {
		if n&1 == 1 {
			if result, err = c.Add(result, addend); err != nil {
				return Point{}, err
			}
		}
		if addend, err = c.Add(addend, addend); err != nil {
			return Point{}, err
		}
		n >>= 1
	}
	return result, nil
}
