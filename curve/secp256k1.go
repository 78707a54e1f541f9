package curve

import (
	"crypto/elliptic"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/pkg/errors"
)

// BigPoint is an affine point with arbitrary-precision coordinates. (0, 0)
// stands for the point at infinity, as in crypto/elliptic.
type BigPoint struct{ X, Y *big.Int }

// IsInfinity reports whether p is the (0, 0) encoding of the identity.
func (p BigPoint) IsInfinity() bool {
	return (p.X == nil || p.X.Sign() == 0) && (p.Y == nil || p.Y.Sign() == 0)
}

// Secp256k1Group wraps btcec.S256() as a Group. It serves as a reference
// implementation of the same group laws on a production-size curve.
type Secp256k1Group struct {
	curve elliptic.Curve
}

var _ Group[BigPoint] = (*Secp256k1Group)(nil)

// NewSecp256k1Group returns a Group over secp256k1.
func NewSecp256k1Group() *Secp256k1Group {
	return &Secp256k1Group{curve: btcec.S256()}
}

func (g *Secp256k1Group) Name() string { return "secp256k1" }

func (g *Secp256k1Group) Identity() BigPoint {
	return BigPoint{X: new(big.Int), Y: new(big.Int)}
}

// Base returns the standard generator G.
func (g *Secp256k1Group) Base() BigPoint {
	params := g.curve.Params()
	return BigPoint{X: new(big.Int).Set(params.Gx), Y: new(big.Int).Set(params.Gy)}
}

func (g *Secp256k1Group) Add(p, q BigPoint) (BigPoint, error) {
	if p.IsInfinity() {
		return q, nil
	}
	if q.IsInfinity() {
		return p, nil
	}
	x, y := g.curve.Add(p.X, p.Y, q.X, q.Y)
	return BigPoint{X: x, Y: y}, nil
}

func (g *Secp256k1Group) Negate(p BigPoint) BigPoint {
	if p.IsInfinity() {
		return p
	}
	y := new(big.Int).Sub(g.curve.Params().P, p.Y)
	return BigPoint{X: new(big.Int).Set(p.X), Y: y.Mod(y, g.curve.Params().P)}
}

func (g *Secp256k1Group) ScalarMult(k int64, p BigPoint) (BigPoint, error) {
	if k < 0 {
		return BigPoint{}, errors.Wrapf(ErrUnsupportedScalar, "negative multiplier %d", k)
	}
	if k == 0 || p.IsInfinity() {
		return g.Identity(), nil
	}
	x, y := g.curve.ScalarMult(p.X, p.Y, big.NewInt(k).Bytes())
	return BigPoint{X: x, Y: y}, nil
}

func (g *Secp256k1Group) Equal(p, q BigPoint) bool {
	if p.IsInfinity() || q.IsInfinity() {
		return p.IsInfinity() == q.IsInfinity()
	}
	return p.X.Cmp(q.X) == 0 && p.Y.Cmp(q.Y) == 0
}
