// Package scan enumerates the points of a small curve.
//
// Points is the reference brute-force enumeration: every (x, y) in
// [0, m)² is tested against the curve equation. Scanner produces the same
// list, in the same order, from a table of square roots mod m and a pool of
// workers.
package scan

import (
	"ecgroup/curve"
	"ecgroup/modarith"

	"github.com/pkg/errors"
)

// OnCurve reports whether (y² − (x³ + ax + b)) mod m == 0.
func OnCurve(p curve.Params, x, y int64) (bool, error) {
	return p.Satisfies(x, y)
}

// Points returns every point of the curve group: affine points ordered by x
// then y, followed by a single point at infinity.
func Points(p curve.Params) ([]curve.Point, error) {
	if p.M < 2 {
		return nil, errors.Wrapf(modarith.ErrInvalidModulus, "m = %d", p.M)
	}
	var points []curve.Point
	for x := int64(0); x < p.M; x++ {
		for y := int64(0); y < p.M; y++ {
			ok, err := OnCurve(p, x, y)
			if err != nil {
				return nil, errors.WithMessagef(err, "test (%d, %d)", x, y)
			}
			if ok {
				points = append(points, curve.NewPoint(x, y))
			}
		}
	}
	return append(points, curve.Infinity()), nil
}
