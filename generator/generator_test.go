package generator

import (
	"bytes"
	"context"
	"os"
	"testing"

	"ecgroup/curve"
	"ecgroup/logs"
	"ecgroup/modarith"
	"ecgroup/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var small = curve.Params{A: 4, B: 4, M: 7}

var fixtures = []struct {
	params     curve.Params
	groupOrder int64
	generators []curve.Point
	cyclic     bool
}{
	{small, 10, []curve.Point{
		curve.NewPoint(0, 2), curve.NewPoint(0, 5), curve.NewPoint(3, 1), curve.NewPoint(3, 6),
	}, true},
	{curve.Params{A: 1, B: 1, M: 5}, 9, []curve.Point{
		curve.NewPoint(0, 1), curve.NewPoint(0, 4), curve.NewPoint(3, 1),
		curve.NewPoint(3, 4), curve.NewPoint(4, 2), curve.NewPoint(4, 3),
	}, true},
	{curve.Params{A: 0, B: 7, M: 17}, 18, []curve.Point{
		curve.NewPoint(6, 6), curve.NewPoint(6, 11), curve.NewPoint(10, 2),
		curve.NewPoint(10, 15), curve.NewPoint(15, 4), curve.NewPoint(15, 13),
	}, true},
	{curve.Params{A: 2, B: 3, M: 97}, 100, nil, false},
}

func TestOrderOf(t *testing.T) {
	cases := map[curve.Point]int64{
		curve.Infinity():     1,
		curve.NewPoint(0, 2): 10,
		curve.NewPoint(3, 6): 10,
		curve.NewPoint(1, 3): 5,
		curve.NewPoint(1, 4): 5,
		curve.NewPoint(5, 3): 5,
		curve.NewPoint(5, 4): 5,
		curve.NewPoint(4, 0): 2,
	}
	for pt, want := range cases {
		got, err := OrderOf(small, pt)
		require.NoError(t, err)
		assert.Equal(t, want, got, "order of %s", pt)

		kp, err := small.ScalarMult(got, pt)
		require.NoError(t, err)
		assert.True(t, kp.IsInfinity())
	}
}

func TestOrderOfBound(t *testing.T) {
	_, err := orderOf(small, curve.NewPoint(0, 2), 5)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.Equal(t, int64(16), orderBound(7))
}

func TestOrderOfPropagatesArithmeticErrors(t *testing.T) {
	_, err := OrderOf(curve.Params{A: 1, B: 1, M: 15}, curve.NewPoint(1, 5))
	assert.ErrorIs(t, err, modarith.ErrNonInvertible)
}

func TestFindGenerators(t *testing.T) {
	for _, f := range fixtures {
		gens, err := FindGenerators(f.params)
		require.NoError(t, err)
		assert.Equal(t, f.generators, gens, f.params.String())

		for _, g := range gens {
			k, err := OrderOf(f.params, g)
			require.NoError(t, err)
			assert.Equal(t, f.groupOrder, k)
		}
	}

	gens, err := FindGenerators(curve.Params{A: 2, B: 2, M: 17})
	require.NoError(t, err)
	assert.Len(t, gens, 18)
	assert.Equal(t, curve.NewPoint(0, 6), gens[0])
}

func TestGeneratorSpansGroup(t *testing.T) {
	seen := make(map[curve.Point]bool)
	g := curve.NewPoint(0, 2)
	for k := int64(1); k <= 10; k++ {
		kp, err := small.ScalarMult(k, g)
		require.NoError(t, err)
		seen[kp] = true
	}
	assert.Len(t, seen, 10)
}

func TestClassify(t *testing.T) {
	f, err := NewFinder(WithWorkers(3), WithCache(64))
	require.NoError(t, err)

	for _, fx := range fixtures {
		c, err := f.Classify(context.Background(), fx.params)
		require.NoError(t, err)
		assert.Equal(t, fx.groupOrder, c.GroupOrder)
		assert.Len(t, c.Points, int(fx.groupOrder))
		assert.Equal(t, fx.generators, c.Generators)
		assert.Equal(t, fx.cyclic, c.Cyclic())
		assert.True(t, c.Lagrange())
		assert.Equal(t, int64(1), c.OrderOf(curve.Infinity()))

		gens, err := FindGenerators(fx.params)
		require.NoError(t, err)
		assert.Equal(t, gens, c.Generators)
	}
}

func TestClassifyUsesCache(t *testing.T) {
	rec := stats.NewStats()
	f, err := NewFinder(WithWorkers(2), WithCache(64), WithRecorder(rec))
	require.NoError(t, err)

	_, err = f.Classify(context.Background(), small)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), rec.OpCounts()[stats.OpOrder])
	assert.Zero(t, rec.OpCounts()[stats.OpCacheHit])

	_, err = f.Classify(context.Background(), small)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), rec.OpCounts()[stats.OpOrder])
	assert.Equal(t, uint64(10), rec.OpCounts()[stats.OpCacheHit])

	// sum of orders: 1 + 2 + 4·5 + 4·10
	assert.Equal(t, uint64(63), rec.OpCounts()[stats.OpScalarMult])
}

func TestClassifyLogsOrders(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, logs.Configure(logs.Config{Level: "debug", Writer: &buf}))
	t.Cleanup(func() { _ = logs.Configure(logs.Config{Writer: os.Stderr}) })

	f, err := NewFinder(WithLogger(logs.New("generator")))
	require.NoError(t, err)
	_, err = f.Classify(context.Background(), small)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "point (0, 2): order = 10")
	assert.Contains(t, out, "point (4, 0): order = 2")
	assert.Contains(t, out, "point infinity: order = 1")
}

func TestClassifyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f, err := NewFinder()
	require.NoError(t, err)
	_, err = f.Classify(ctx, small)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLagrangeViolation(t *testing.T) {
	c := &Classification{
		GroupOrder: 10,
		Orders:     map[curve.Point]int64{curve.Infinity(): 1, curve.NewPoint(0, 2): 3},
	}
	assert.False(t, c.Lagrange())
	assert.False(t, c.Cyclic())
}

func TestOrderCacheKeyedByPointHash(t *testing.T) {
	f, err := NewFinder(WithCache(8))
	require.NoError(t, err)

	pt := curve.NewPoint(0, 2)
	k, err := f.OrderOf(small, pt)
	require.NoError(t, err)
	assert.Equal(t, int64(10), k)

	v, ok := f.cache.Get(orderKey{params: small, hash: pt.Hash()})
	require.True(t, ok)
	assert.Equal(t, orderEntry{point: pt, order: 10}, v)

	// an entry stored under the hash of another point is not trusted
	other := curve.NewPoint(4, 0)
	f.cache.Add(orderKey{params: small, hash: other.Hash()}, orderEntry{point: pt, order: 10})
	k, err = f.OrderOf(small, other)
	require.NoError(t, err)
	assert.Equal(t, int64(2), k)
}
