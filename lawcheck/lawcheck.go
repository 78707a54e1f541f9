// Package lawcheck verifies the abelian group laws on sampled elements of any
// curve.Group.
package lawcheck

import (
	"encoding/binary"
	"fmt"

	"ecgroup/curve"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/crypto/sha3"
)

// Law names used in violations.
const (
	LawIdentity      = "identity"
	LawInverse       = "inverse"
	LawCommutativity = "commutativity"
	LawAssociativity = "associativity"
	LawScalar        = "scalar"
	LawClosure       = "closure"
)

// Options controls sampling. Zero values select the defaults.
type Options[P any] struct {
	// Seed makes triple selection reproducible.
	Seed []byte
	// Triples is the number of (p, q, r) triples tested for associativity.
	Triples int
	// MaxScalar bounds k in the k·p = (k-1)·p + p check.
	MaxScalar int64
	// Contains, when set, is checked on every computed sum.
	Contains func(p P) (bool, error)
}

const (
	defaultTriples   = 64
	defaultMaxScalar = 16
)

var defaultSeed = []byte("ecgroup/lawcheck")

// Violation is one failed law instance.
type Violation struct {
	Law    string `json:"law" yaml:"law"`
	Detail string `json:"detail" yaml:"detail"`
}

func (v Violation) Error() string { return v.Law + ": " + v.Detail }

// Report is the result of Check.
type Report struct {
	Group      string         `json:"group" yaml:"group"`
	Checked    map[string]int `json:"checked" yaml:"checked"`
	Violations []Violation    `json:"violations,omitempty" yaml:"violations,omitempty"`
}

// OK reports whether no law was violated.
func (r Report) OK() bool { return len(r.Violations) == 0 }

// Err combines all violations, or returns nil.
func (r Report) Err() error {
	var err error
	for _, v := range r.Violations {
		err = multierr.Append(err, v)
	}
	if err != nil {
		return errors.WithMessagef(err, "%s: %d group law violations", r.Group, len(r.Violations))
	}
	return nil
}

type checker[P any] struct {
	g      curve.Group[P]
	opts   Options[P]
	report Report
}

func (c *checker[P]) fail(law, format string, args ...interface{}) {
	c.report.Violations = append(c.report.Violations, Violation{Law: law, Detail: fmt.Sprintf(format, args...)})
}

func (c *checker[P]) count(law string) { c.report.Checked[law]++ }

// add returns p + q, recording arithmetic errors and closure failures.
func (c *checker[P]) add(law string, p, q P) (P, bool) {
	s, err := c.g.Add(p, q)
	if err != nil {
		c.fail(law, "%v + %v: %v", p, q, err)
		return s, false
	}
	if c.opts.Contains != nil {
		c.count(LawClosure)
		on, err := c.opts.Contains(s)
		if err != nil || !on {
			c.fail(LawClosure, "%v + %v = %v is not in the group", p, q, s)
		}
	}
	return s, true
}

func (c *checker[P]) mult(k int64, p P) (P, bool) {
	s, err := c.g.ScalarMult(k, p)
	if err != nil {
		c.fail(LawScalar, "%d·%v: %v", k, p, err)
		return s, false
	}
	return s, true
}

// Check tests the group laws on samples. Identity and inverse are checked for
// every sample, commutativity for every pair, associativity on Triples
// triples drawn from a SHA3 stream over Seed, and the scalar recurrence for
// k up to MaxScalar.
func Check[P any](g curve.Group[P], samples []P, opts Options[P]) Report {
	if opts.Triples <= 0 {
		opts.Triples = defaultTriples
	}
	if opts.MaxScalar <= 0 {
		opts.MaxScalar = defaultMaxScalar
	}
	if len(opts.Seed) == 0 {
		opts.Seed = defaultSeed
	}
	c := &checker[P]{
		g:    g,
		opts: opts,
		report: Report{
			Group:   g.Name(),
			Checked: make(map[string]int),
		},
	}
	id := g.Identity()

	for _, p := range samples {
		c.count(LawIdentity)
		if s, ok := c.add(LawIdentity, p, id); ok && !g.Equal(s, p) {
			c.fail(LawIdentity, "%v + O = %v", p, s)
		}
		if s, ok := c.add(LawIdentity, id, p); ok && !g.Equal(s, p) {
			c.fail(LawIdentity, "O + %v = %v", p, s)
		}

		c.count(LawInverse)
		if s, ok := c.add(LawInverse, p, g.Negate(p)); ok && !g.Equal(s, id) {
			c.fail(LawInverse, "%v + (-%v) = %v", p, p, s)
		}
	}

	for i, p := range samples {
		for _, q := range samples[i:] {
			c.count(LawCommutativity)
			pq, ok1 := c.add(LawCommutativity, p, q)
			qp, ok2 := c.add(LawCommutativity, q, p)
			if ok1 && ok2 && !g.Equal(pq, qp) {
				c.fail(LawCommutativity, "%v + %v = %v but %v + %v = %v", p, q, pq, q, p, qp)
			}
		}
	}

	if len(samples) > 0 {
		idx := newIndexStream(opts.Seed, len(samples))
		for n := 0; n < opts.Triples; n++ {
			p, q, r := samples[idx.next()], samples[idx.next()], samples[idx.next()]
			c.checkAssociative(p, q, r)
		}
	}

	for _, p := range samples {
		c.checkScalar(p)
	}
	return c.report
}

func (c *checker[P]) checkAssociative(p, q, r P) {
	c.count(LawAssociativity)
	pq, ok := c.add(LawAssociativity, p, q)
	if !ok {
		return
	}
	left, ok := c.add(LawAssociativity, pq, r)
	if !ok {
		return
	}
	qr, ok := c.add(LawAssociativity, q, r)
	if !ok {
		return
	}
	right, ok := c.add(LawAssociativity, p, qr)
	if !ok {
		return
	}
	if !c.g.Equal(left, right) {
		c.fail(LawAssociativity, "(%v + %v) + %v = %v but %v + (%v + %v) = %v", p, q, r, left, p, q, r, right)
	}
}

func (c *checker[P]) checkScalar(p P) {
	g := c.g
	c.count(LawScalar)
	zero, ok := c.mult(0, p)
	if ok && !g.Equal(zero, g.Identity()) {
		c.fail(LawScalar, "0·%v = %v", p, zero)
	}
	one, ok := c.mult(1, p)
	if ok && !g.Equal(one, p) {
		c.fail(LawScalar, "1·%v = %v", p, one)
	}
	prev := g.Identity()
	for k := int64(1); k <= c.opts.MaxScalar; k++ {
		kp, ok := c.mult(k, p)
		if !ok {
			return
		}
		step, ok := c.add(LawScalar, prev, p)
		if !ok {
			return
		}
		if !g.Equal(kp, step) {
			c.fail(LawScalar, "%d·%v = %v but %d·%v + %v = %v", k, p, kp, k-1, p, p, step)
		}
		prev = kp
	}
}

// indexStream draws indices in [0, n) from SHA3-256(seed || counter).
type indexStream struct {
	seed    []byte
	n       uint64
	counter uint64
	buf     []byte
}

func newIndexStream(seed []byte, n int) *indexStream {
	return &indexStream{seed: seed, n: uint64(n)}
}

func (s *indexStream) next() int {
	if len(s.buf) < 8 {
		var ctr [8]byte
		binary.BigEndian.PutUint64(ctr[:], s.counter)
		s.counter++
		sum := sha3.Sum256(append(append([]byte(nil), s.seed...), ctr[:]...))
		s.buf = sum[:]
	}
	v := binary.BigEndian.Uint64(s.buf[:8])
	s.buf = s.buf[8:]
	return int(v % s.n)
}
