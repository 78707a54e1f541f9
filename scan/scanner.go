package scan

import (
	"context"
	"runtime"
	"time"

	"ecgroup/curve"
	"ecgroup/logs"
	"ecgroup/modarith"
	"ecgroup/stats"

	"github.com/RoaringBitmap/roaring"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// MaxIndexedModulus bounds the modulus the root table is built for.
const MaxIndexedModulus = 1 << 22

var (
	// ErrModulusTooLarge is returned by Scanner for m above MaxIndexedModulus.
	ErrModulusTooLarge = errors.New("modulus too large to index")
)

const minChunk = 64

// Scanner enumerates curve points in parallel.
type Scanner struct {
	workers int
	logger  logs.Logger
	rec     stats.Recorder
}

// NewScanner returns a Scanner using the given number of workers; workers <= 0
// means one per CPU.
func NewScanner(workers int, logger logs.Logger) *Scanner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = logs.Nop()
	}
	return &Scanner{
		workers: workers,
		logger:  logger,
		rec:     (*stats.Stats)(nil),
	}
}

// WithRecorder makes the scanner report enumeration timings to r.
func (s *Scanner) WithRecorder(r stats.Recorder) *Scanner {
	if r != nil {
		s.rec = r
	}
	return s
}

// rootTable indexes the quadratic residues mod a prime m. The bitmap is the
// membership set; sqrt holds the smaller root of each residue, the other one
// is m - sqrt[v].
type rootTable struct {
	m        int64
	residues *roaring.Bitmap
	sqrt     []uint32
}

func buildRootTable(m int64) (*rootTable, error) {
	t := &rootTable{
		m:        m,
		residues: roaring.New(),
		sqrt:     make([]uint32, m),
	}
	// y and m-y share a square, so half the range covers every residue
	for y := int64(0); y <= m/2; y++ {
		r, err := modarith.Square(y, m)
		if err != nil {
			return nil, err
		}
		if t.residues.CheckedAdd(uint32(r)) {
			t.sqrt[r] = uint32(y)
		}
	}
	t.residues.RunOptimize()
	return t, nil
}

// rootCount is the number of y in [0, m) with y² ≡ v.
func (t *rootTable) rootCount(v int64) int64 {
	switch {
	case !t.residues.Contains(uint32(v)):
		return 0
	case v == 0 || 2*int64(t.sqrt[v]) == t.m:
		return 1
	}
	return 2
}

// appendRoots appends the roots of v to dst in ascending order.
func (t *rootTable) appendRoots(dst []int64, v int64) []int64 {
	switch t.rootCount(v) {
	case 1:
		dst = append(dst, int64(t.sqrt[v]))
	case 2:
		y := int64(t.sqrt[v])
		dst = append(dst, y, t.m-y)
	}
	return dst
}

func (s *Scanner) prepare(p curve.Params) (*rootTable, error) {
	if p.M < 2 {
		return nil, errors.Wrapf(modarith.ErrInvalidModulus, "m = %d", p.M)
	}
	if p.M > MaxIndexedModulus {
		return nil, errors.Wrapf(ErrModulusTooLarge, "m = %d", p.M)
	}
	// two roots per residue only holds for a prime modulus
	if !modarith.IsProbablePrime(p.M) {
		return nil, errors.Wrapf(curve.ErrCompositeModulus, "m = %d", p.M)
	}
	return buildRootTable(p.M)
}

type span struct{ lo, hi int64 }

func (s *Scanner) spans(m int64) []span {
	size := (m + int64(s.workers)*4 - 1) / (int64(s.workers) * 4)
	if size < minChunk {
		size = minChunk
	}
	var out []span
	for lo := int64(0); lo < m; lo += size {
		hi := lo + size
		if hi > m {
			hi = m
		}
		out = append(out, span{lo, hi})
	}
	return out
}

// Points returns the same list as the package-level Points.
func (s *Scanner) Points(ctx context.Context, p curve.Params) ([]curve.Point, error) {
	start := time.Now()
	table, err := s.prepare(p)
	if err != nil {
		return nil, err
	}
	spans := s.spans(p.M)
	s.logger.Debug("scanning %s: %d residues, %d chunks, %d workers",
		p, table.residues.GetCardinality(), len(spans), s.workers)

	results := make([][]curve.Point, len(spans))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, sp := range spans {
		i, sp := i, sp
		g.Go(func() error {
			var found []curve.Point
			ys := make([]int64, 0, 2)
			for x := sp.lo; x < sp.hi; x++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				rhs, err := p.RHS(x)
				if err != nil {
					return errors.WithMessagef(err, "x = %d", x)
				}
				for _, y := range table.appendRoots(ys[:0], rhs) {
					found = append(found, curve.NewPoint(x, y))
				}
			}
			results[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var points []curve.Point
	for _, r := range results {
		points = append(points, r...)
	}
	points = append(points, curve.Infinity())
	s.rec.Observe(stats.OpEnumerate, time.Since(start))
	s.logger.Debug("found %d points on %s in %v", len(points), p, time.Since(start))
	return points, nil
}

// Count returns the group order: the number of affine points plus one.
func (s *Scanner) Count(ctx context.Context, p curve.Params) (int64, error) {
	table, err := s.prepare(p)
	if err != nil {
		return 0, err
	}
	spans := s.spans(p.M)
	counts := make([]int64, len(spans))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, sp := range spans {
		i, sp := i, sp
		g.Go(func() error {
			var n int64
			for x := sp.lo; x < sp.hi; x++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				rhs, err := p.RHS(x)
				if err != nil {
					return errors.WithMessagef(err, "x = %d", x)
				}
				n += table.rootCount(rhs)
			}
			counts[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	total := int64(1)
	for _, n := range counts {
		total += n
	}
	return total, nil
}
