package curve

import (
	"github.com/pkg/errors"
	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/group/edwards25519"
)

// Ed25519Group exposes the Edwards25519 group through kyber as a Group.
type Ed25519Group struct {
	suite *edwards25519.SuiteEd25519
}

var _ Group[kyber.Point] = (*Ed25519Group)(nil)

func NewEd25519Group() *Ed25519Group {
	return &Ed25519Group{
		suite: edwards25519.NewBlakeSHA256Ed25519(),
	}
}

func (g *Ed25519Group) Name() string { return "ed25519" }

func (g *Ed25519Group) Identity() kyber.Point { return g.suite.Point().Null() }

// Base returns the standard base point.
func (g *Ed25519Group) Base() kyber.Point { return g.suite.Point().Base() }

func (g *Ed25519Group) Add(p, q kyber.Point) (kyber.Point, error) {
	return g.suite.Point().Add(p, q), nil
}

func (g *Ed25519Group) Negate(p kyber.Point) kyber.Point {
	return g.suite.Point().Neg(p)
}

func (g *Ed25519Group) ScalarMult(k int64, p kyber.Point) (kyber.Point, error) {
	if k < 0 {
		return nil, errors.Wrapf(ErrUnsupportedScalar, "negative multiplier %d", k)
	}
	s := g.suite.Scalar().SetInt64(k)
	return g.suite.Point().Mul(s, p), nil
}

func (g *Ed25519Group) Equal(p, q kyber.Point) bool { return p.Equal(q) }
