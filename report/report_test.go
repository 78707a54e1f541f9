package report

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"ecgroup/curve"
	"ecgroup/generator"
	"ecgroup/lawcheck"
	"ecgroup/scan"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var small = curve.Params{A: 4, B: 4, M: 7}

func classify(t *testing.T, p curve.Params) *generator.Classification {
	t.Helper()
	f, err := generator.NewFinder(generator.WithWorkers(2))
	require.NoError(t, err)
	c, err := f.Classify(context.Background(), p)
	require.NoError(t, err)
	return c
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatText, "TEXT": FormatText, "json": FormatJSON, "yml": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestGeneratorDensity(t *testing.T) {
	assert.True(t, decimal.RequireFromString("0.4").Equal(GeneratorDensity(classify(t, small))))
	assert.Equal(t, "0.6667", GeneratorDensity(classify(t, curve.Params{A: 1, B: 1, M: 5})).StringFixed(4))
	assert.True(t, GeneratorDensity(&generator.Classification{}).IsZero())
}

func TestPointsText(t *testing.T) {
	pts, err := scan.Points(small)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Points(&buf, FormatText, small, pts))
	out := buf.String()
	assert.Contains(t, out, "(0, 2)\n")
	assert.Contains(t, out, "Point at infinity\n")
	assert.Contains(t, out, "Group order: 10")
}

func TestGeneratorsText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Generators(&buf, FormatText, small, []curve.Point{curve.NewPoint(0, 2)}))
	assert.Equal(t, "Generators:\n(0, 2)\n", buf.String())

	buf.Reset()
	require.NoError(t, Generators(&buf, FormatText, small, nil))
	assert.Contains(t, buf.String(), "not cyclic")
}

func TestOrderFormats(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Order(&buf, FormatText, small, curve.NewPoint(4, 0), 2))
	assert.Equal(t, "point (4, 0): order = 2\n", buf.String())

	buf.Reset()
	require.NoError(t, Order(&buf, FormatJSON, small, curve.NewPoint(4, 0), 2))
	var v map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &v))
	assert.Equal(t, "(4, 0)", v["point"])
	assert.Equal(t, float64(2), v["order"])
}

func TestClassificationJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Classification(&buf, FormatJSON, classify(t, small)))

	var v ClassificationView
	require.NoError(t, json.Unmarshal(buf.Bytes(), &v))
	assert.Equal(t, int64(10), v.GroupOrder)
	assert.True(t, v.Cyclic)
	assert.True(t, v.Lagrange)
	assert.Equal(t, "0.4000", v.GeneratorDensity)
	assert.Equal(t, []string{"(0, 2)", "(0, 5)", "(3, 1)", "(3, 6)"}, v.Generators)
	require.Len(t, v.Points, 10)
	assert.Equal(t, PointOrder{Point: "infinity", Order: 1}, v.Points[9])
}

func TestClassificationYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Classification(&buf, FormatYAML, classify(t, curve.Params{A: 2, B: 3, M: 97})))

	var v ClassificationView
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &v))
	assert.Equal(t, int64(100), v.GroupOrder)
	assert.False(t, v.Cyclic)
	assert.Empty(t, v.Generators)
	assert.Equal(t, "0.0000", v.GeneratorDensity)
	assert.Equal(t, curve.Params{A: 2, B: 3, M: 97}, v.Params)
}

func TestClassificationText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Classification(&buf, FormatText, classify(t, small)))
	out := buf.String()
	assert.Contains(t, out, "point (0, 2): order = 10  *\n")
	assert.Contains(t, out, "point (1, 3): order = 5\n")
	assert.Contains(t, out, "Generators: 4 (density 0.4000)")
}

func TestLawReportText(t *testing.T) {
	pts, err := scan.Points(small)
	require.NoError(t, err)
	r := lawcheck.Check[curve.Point](small, pts, lawcheck.Options[curve.Point]{})

	var buf bytes.Buffer
	require.NoError(t, LawReport(&buf, FormatText, r))
	assert.Contains(t, buf.String(), "all group laws hold")
	assert.Contains(t, buf.String(), "associativity")

	bad := lawcheck.Report{Group: "g", Violations: []lawcheck.Violation{{Law: "inverse", Detail: "x"}}}
	buf.Reset()
	require.NoError(t, LawReport(&buf, FormatText, bad))
	assert.Contains(t, buf.String(), "1 violations")
	assert.Contains(t, buf.String(), "inverse: x")
}
