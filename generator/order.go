// Package generator computes point orders and finds the generators of a
// small curve group.
package generator

import (
	"math"

	"ecgroup/curve"
	"ecgroup/scan"

	"github.com/pkg/errors"
)

// ErrOrderNotFound is returned when k·P does not reach the identity within
// the Hasse bound. It only happens for points that are not on the curve or
// for parameters that do not describe a group.
var ErrOrderNotFound = errors.New("order not found")

// orderBound is 2m + 2, above the Hasse bound m + 1 + 2√m for every m.
func orderBound(m int64) int64 {
	if m > (math.MaxInt64-2)/2 {
		return math.MaxInt64
	}
	return 2*m + 2
}

// OrderOf returns the smallest k >= 1 with k·pt = O.
func OrderOf(p curve.Params, pt curve.Point) (int64, error) {
	return orderOf(p, pt, orderBound(p.M))
}

func orderOf(p curve.Params, pt curve.Point, bound int64) (int64, error) {
	for k := int64(1); k <= bound; k++ {
		q, err := p.ScalarMult(k, pt)
		if err != nil {
			return 0, errors.WithMessagef(err, "order of %s", pt)
		}
		if q.IsInfinity() {
			return k, nil
		}
	}
	return 0, errors.Wrapf(ErrOrderNotFound, "%s on %s after %d multiples", pt, p, bound)
}

// FindGenerators returns the points whose order equals the group order, in
// enumeration order. A curve whose group is not cyclic has none.
func FindGenerators(p curve.Params) ([]curve.Point, error) {
	points, err := scan.Points(p)
	if err != nil {
		return nil, err
	}
	total := int64(len(points))
	var gens []curve.Point
	for _, pt := range points {
		k, err := OrderOf(p, pt)
		if err != nil {
			return nil, err
		}
		if k == total {
			gens = append(gens, pt)
		}
	}
	return gens, nil
}
