package scan

import (
	"context"
	"testing"

	"ecgroup/curve"
	"ecgroup/modarith"
	"ecgroup/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixtures = []struct {
	params curve.Params
	order  int
}{
	{curve.Params{A: 4, B: 4, M: 7}, 10},
	{curve.Params{A: 1, B: 1, M: 5}, 9},
	{curve.Params{A: 2, B: 2, M: 17}, 19},
	{curve.Params{A: 0, B: 7, M: 17}, 18},
	{curve.Params{A: 2, B: 3, M: 97}, 100},
}

func TestOnCurve(t *testing.T) {
	p := curve.Params{A: 4, B: 4, M: 7}
	ok, err := OnCurve(p, 0, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = OnCurve(p, 1, 0)
	require.NoError(t, err)
	assert.False(t, ok)

	// negative coefficients reduce with the Euclidean remainder
	ok, err = OnCurve(curve.Params{A: -3, B: 4, M: 7}, 0, 2)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPointsSmallCurve(t *testing.T) {
	got, err := Points(curve.Params{A: 4, B: 4, M: 7})
	require.NoError(t, err)

	want := []curve.Point{
		curve.NewPoint(0, 2), curve.NewPoint(0, 5),
		curve.NewPoint(1, 3), curve.NewPoint(1, 4),
		curve.NewPoint(3, 1), curve.NewPoint(3, 6),
		curve.NewPoint(4, 0),
		curve.NewPoint(5, 3), curve.NewPoint(5, 4),
		curve.Infinity(),
	}
	assert.Equal(t, want, got)
}

func TestPointsInvariants(t *testing.T) {
	for _, f := range fixtures {
		pts, err := Points(f.params)
		require.NoError(t, err)
		require.Len(t, pts, f.order, f.params.String())

		infinities := 0
		for i, p := range pts {
			ok, err := f.params.Contains(p)
			require.NoError(t, err)
			assert.True(t, ok, "%s not on %s", p, f.params)
			if p.IsInfinity() {
				infinities++
				assert.Equal(t, len(pts)-1, i, "infinity must be last")
				continue
			}
			if i > 0 && !pts[i-1].IsInfinity() {
				prev := pts[i-1]
				assert.True(t, prev.X() < p.X() || (prev.X() == p.X() && prev.Y() < p.Y()),
					"%s listed before %s", prev, p)
			}
		}
		assert.Equal(t, 1, infinities)
	}
}

func TestPointsInvalidModulus(t *testing.T) {
	_, err := Points(curve.Params{A: 1, B: 1, M: 0})
	assert.ErrorIs(t, err, modarith.ErrInvalidModulus)
}

func TestScannerMatchesBruteForce(t *testing.T) {
	for _, workers := range []int{1, 3, 0} {
		s := NewScanner(workers, nil)
		for _, f := range fixtures {
			want, err := Points(f.params)
			require.NoError(t, err)

			got, err := s.Points(context.Background(), f.params)
			require.NoError(t, err)
			assert.Equal(t, want, got, "%s with %d workers", f.params, workers)

			n, err := s.Count(context.Background(), f.params)
			require.NoError(t, err)
			assert.Equal(t, int64(f.order), n)
		}
	}
}

func TestScannerLargerModulus(t *testing.T) {
	p := curve.Params{A: 3, B: 5, M: 1009}
	want, err := Points(p)
	require.NoError(t, err)

	rec := stats.NewStats()
	got, err := NewScanner(4, nil).WithRecorder(rec).Points(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Contains(t, rec.Latencies(false), stats.OpEnumerate)
}

func TestScannerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewScanner(2, nil)
	_, err := s.Points(ctx, curve.Params{A: 2, B: 3, M: 97})
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.Count(ctx, curve.Params{A: 2, B: 3, M: 97})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScannerRejectsModulus(t *testing.T) {
	s := NewScanner(1, nil)
	_, err := s.Points(context.Background(), curve.Params{A: 1, B: 1, M: 1})
	assert.ErrorIs(t, err, modarith.ErrInvalidModulus)
	_, err = s.Count(context.Background(), curve.Params{A: 1, B: 1, M: MaxIndexedModulus + 1})
	assert.ErrorIs(t, err, ErrModulusTooLarge)
}

func TestRootTableMatchesSquares(t *testing.T) {
	for _, m := range []int64{2, 3, 7, 97, 1009} {
		tab, err := buildRootTable(m)
		require.NoError(t, err)

		want := make(map[int64][]int64)
		for y := int64(0); y < m; y++ {
			want[y*y%m] = append(want[y*y%m], y)
		}
		for v := int64(0); v < m; v++ {
			assert.Equal(t, int64(len(want[v])), tab.rootCount(v), "m=%d v=%d", m, v)
			assert.Equal(t, want[v], tab.appendRoots(nil, v), "m=%d v=%d", m, v)
		}
		assert.Equal(t, uint64(len(want)), tab.residues.GetCardinality(), "m=%d", m)
	}
}

func TestScannerRejectsCompositeModulus(t *testing.T) {
	s := NewScanner(1, nil)
	_, err := s.Points(context.Background(), curve.Params{A: 1, B: 1, M: 15})
	assert.ErrorIs(t, err, curve.ErrCompositeModulus)
	_, err = s.Count(context.Background(), curve.Params{A: 1, B: 1, M: 15})
	assert.ErrorIs(t, err, curve.ErrCompositeModulus)
}
