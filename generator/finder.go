package generator

import (
	"context"
	"runtime"
	"time"

	"ecgroup/curve"
	"ecgroup/logs"
	"ecgroup/scan"
	"ecgroup/stats"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Classification is a curve group with the order of every point.
type Classification struct {
	Params     curve.Params          `json:"params" yaml:"params"`
	Points     []curve.Point         `json:"points" yaml:"points"`
	Orders     map[curve.Point]int64 `json:"orders" yaml:"orders"`
	Generators []curve.Point         `json:"generators" yaml:"generators"`
	GroupOrder int64                 `json:"group_order" yaml:"group_order"`
}

// OrderOf returns the recorded order of pt, or 0 when pt is not in the group.
func (c *Classification) OrderOf(pt curve.Point) int64 {
	return c.Orders[pt]
}

// Lagrange reports whether every point order divides the group order.
func (c *Classification) Lagrange() bool {
	if c.GroupOrder == 0 {
		return false
	}
	for _, k := range c.Orders {
		if k == 0 || c.GroupOrder%k != 0 {
			return false
		}
	}
	return true
}

// Cyclic reports whether the group has a generator.
func (c *Classification) Cyclic() bool { return len(c.Generators) > 0 }

// orderKey identifies a cached order by curve and point hash; the entry keeps
// the point to rule out hash collisions.
type orderKey struct {
	params curve.Params
	hash   uint64
}

type orderEntry struct {
	point curve.Point
	order int64
}

// Finder computes orders concurrently and caches them per curve and point.
type Finder struct {
	workers int
	logger  logs.Logger
	rec     stats.Recorder
	cache   *lru.Cache
	scanner *scan.Scanner
}

type Option func(*Finder) error

func WithWorkers(n int) Option {
	return func(f *Finder) error {
		if n > 0 {
			f.workers = n
		}
		return nil
	}
}

func WithLogger(l logs.Logger) Option {
	return func(f *Finder) error {
		if l != nil {
			f.logger = l
		}
		return nil
	}
}

// WithCache keeps up to size computed orders.
func WithCache(size int) Option {
	return func(f *Finder) error {
		if size <= 0 {
			f.cache = nil
			return nil
		}
		c, err := lru.New(size)
		if err != nil {
			return errors.Wrap(err, "order cache")
		}
		f.cache = c
		return nil
	}
}

func WithRecorder(r stats.Recorder) Option {
	return func(f *Finder) error {
		if r != nil {
			f.rec = r
		}
		return nil
	}
}

func NewFinder(opts ...Option) (*Finder, error) {
	f := &Finder{
		workers: runtime.NumCPU(),
		logger:  logs.Nop(),
		rec:     (*stats.Stats)(nil),
	}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	f.scanner = scan.NewScanner(f.workers, f.logger.Named("scan")).WithRecorder(f.rec)
	return f, nil
}

// OrderOf is OrderOf backed by the cache.
func (f *Finder) OrderOf(p curve.Params, pt curve.Point) (int64, error) {
	key := orderKey{params: p, hash: pt.Hash()}
	if f.cache != nil {
		if v, ok := f.cache.Get(key); ok {
			if e := v.(orderEntry); e.point.Equal(pt) {
				f.rec.RecordOp(stats.OpCacheHit, 1)
				return e.order, nil
			}
		}
	}
	start := time.Now()
	k, err := OrderOf(p, pt)
	if err != nil {
		return 0, err
	}
	f.rec.RecordOp(stats.OpOrder, 1)
	f.rec.RecordOp(stats.OpScalarMult, int(k))
	f.rec.Observe(stats.OpOrder, time.Since(start))
	if f.cache != nil {
		f.cache.Add(key, orderEntry{point: pt, order: k})
	}
	return k, nil
}

// Classify enumerates the group of p and computes the order of every point.
func (f *Finder) Classify(ctx context.Context, p curve.Params) (*Classification, error) {
	points, err := f.scanner.Points(ctx, p)
	if err != nil {
		return nil, errors.WithMessagef(err, "enumerate %s", p)
	}

	orders := make([]int64, len(points))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)
	for i, pt := range points {
		i, pt := i, pt
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			k, err := f.OrderOf(p, pt)
			if err != nil {
				return err
			}
			orders[i] = k
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c := &Classification{
		Params:     p,
		Points:     points,
		Orders:     make(map[curve.Point]int64, len(points)),
		GroupOrder: int64(len(points)),
	}
	for i, pt := range points {
		c.Orders[pt] = orders[i]
		f.logger.Debug("point %s: order = %d", pt, orders[i])
		if orders[i] == c.GroupOrder {
			c.Generators = append(c.Generators, pt)
		}
	}
	f.logger.Verbose("%s: %d points, %d generators", p, c.GroupOrder, len(c.Generators))
	return c, nil
}
