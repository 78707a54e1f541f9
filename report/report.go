// Package report renders results for the command line.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"ecgroup/curve"
	"ecgroup/generator"
	"ecgroup/lawcheck"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts text, json and yaml (or yml).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", errors.Errorf("unknown output format %q", s)
}

// PointOrder is one row of a classification.
type PointOrder struct {
	Point     string `json:"point" yaml:"point"`
	Order     int64  `json:"order" yaml:"order"`
	Generator bool   `json:"generator" yaml:"generator"`
}

// ClassificationView is the serialized form of a Classification.
type ClassificationView struct {
	Curve            string       `json:"curve" yaml:"curve"`
	Params           curve.Params `json:"params" yaml:"params"`
	GroupOrder       int64        `json:"group_order" yaml:"group_order"`
	Cyclic           bool         `json:"cyclic" yaml:"cyclic"`
	Lagrange         bool         `json:"lagrange" yaml:"lagrange"`
	GeneratorDensity string       `json:"generator_density" yaml:"generator_density"`
	Points           []PointOrder `json:"points" yaml:"points"`
	Generators       []string     `json:"generators" yaml:"generators"`
}

// GeneratorDensity returns generators / group order rounded to 4 places.
func GeneratorDensity(c *generator.Classification) decimal.Decimal {
	if c.GroupOrder == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(len(c.Generators))).
		DivRound(decimal.NewFromInt(c.GroupOrder), 4)
}

func NewClassificationView(c *generator.Classification) ClassificationView {
	gens := make(map[curve.Point]bool, len(c.Generators))
	v := ClassificationView{
		Curve:            c.Params.String(),
		Params:           c.Params,
		GroupOrder:       c.GroupOrder,
		Cyclic:           c.Cyclic(),
		Lagrange:         c.Lagrange(),
		GeneratorDensity: GeneratorDensity(c).StringFixed(4),
		Generators:       make([]string, 0, len(c.Generators)),
	}
	for _, g := range c.Generators {
		gens[g] = true
		v.Generators = append(v.Generators, g.String())
	}
	for _, p := range c.Points {
		v.Points = append(v.Points, PointOrder{Point: p.String(), Order: c.OrderOf(p), Generator: gens[p]})
	}
	return v
}

func encode(w io.Writer, f Format, v interface{}) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(v), "encode json")
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "encode yaml")
		}
		return errors.Wrap(enc.Close(), "encode yaml")
	}
	return errors.Errorf("format %q is not structured", f)
}

func pointLine(p curve.Point) string {
	if p.IsInfinity() {
		return "Point at infinity"
	}
	return p.String()
}

// Points writes the point list of a curve.
func Points(w io.Writer, f Format, params curve.Params, points []curve.Point) error {
	if f != FormatText {
		names := make([]string, len(points))
		for i, p := range points {
			names[i] = p.String()
		}
		return encode(w, f, struct {
			Curve  string   `json:"curve" yaml:"curve"`
			Count  int      `json:"count" yaml:"count"`
			Points []string `json:"points" yaml:"points"`
		}{params.String(), len(points), names})
	}
	var b strings.Builder
	fmt.Fprintf(&b, "All points on the curve %s:\n", params)
	for _, p := range points {
		fmt.Fprintln(&b, pointLine(p))
	}
	fmt.Fprintf(&b, "\nGroup order: %d\n", len(points))
	_, err := io.WriteString(w, b.String())
	return err
}

// Generators writes the generator list of a curve.
func Generators(w io.Writer, f Format, params curve.Params, gens []curve.Point) error {
	if f != FormatText {
		names := make([]string, len(gens))
		for i, g := range gens {
			names[i] = g.String()
		}
		return encode(w, f, struct {
			Curve      string   `json:"curve" yaml:"curve"`
			Generators []string `json:"generators" yaml:"generators"`
		}{params.String(), names})
	}
	var b strings.Builder
	b.WriteString("Generators:\n")
	for _, g := range gens {
		fmt.Fprintln(&b, pointLine(g))
	}
	if len(gens) == 0 {
		fmt.Fprintf(&b, "none: the group of %s is not cyclic\n", params)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Order writes the order of a single point.
func Order(w io.Writer, f Format, params curve.Params, p curve.Point, k int64) error {
	if f != FormatText {
		return encode(w, f, struct {
			Curve string `json:"curve" yaml:"curve"`
			Point string `json:"point" yaml:"point"`
			Order int64  `json:"order" yaml:"order"`
		}{params.String(), p.String(), k})
	}
	_, err := fmt.Fprintf(w, "point %s: order = %d\n", p, k)
	return err
}

// Classification writes every point with its order, then the generators.
func Classification(w io.Writer, f Format, c *generator.Classification) error {
	v := NewClassificationView(c)
	if f != FormatText {
		return encode(w, f, v)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Curve %s\n", v.Curve)
	for _, row := range v.Points {
		mark := ""
		if row.Generator {
			mark = "  *"
		}
		fmt.Fprintf(&b, "point %s: order = %d%s\n", row.Point, row.Order, mark)
	}
	fmt.Fprintf(&b, "\nGroup order: %d\n", v.GroupOrder)
	fmt.Fprintf(&b, "Generators: %d (density %s)\n", len(v.Generators), v.GeneratorDensity)
	fmt.Fprintf(&b, "Cyclic: %v, Lagrange holds: %v\n", v.Cyclic, v.Lagrange)
	_, err := io.WriteString(w, b.String())
	return err
}

// LawReport writes the result of a group-law check.
func LawReport(w io.Writer, f Format, r lawcheck.Report) error {
	if f != FormatText {
		return encode(w, f, r)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Group %s\n", r.Group)
	for _, law := range []string{
		lawcheck.LawIdentity, lawcheck.LawInverse, lawcheck.LawCommutativity,
		lawcheck.LawAssociativity, lawcheck.LawScalar, lawcheck.LawClosure,
	} {
		if n, ok := r.Checked[law]; ok {
			fmt.Fprintf(&b, "  %-14s %d checked\n", law, n)
		}
	}
	if r.OK() {
		b.WriteString("all group laws hold\n")
	} else {
		fmt.Fprintf(&b, "%d violations:\n", len(r.Violations))
		for _, v := range r.Violations {
			fmt.Fprintf(&b, "  %s\n", v.Error())
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
