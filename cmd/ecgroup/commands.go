package main

import (
	"fmt"

	"ecgroup/curve"
	"ecgroup/lawcheck"
	"ecgroup/report"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.dedis.ch/kyber/v3"
)

func (a *app) pointsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "points",
		Short: "List every point of the curve group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pts, err := a.scanner.Points(cmd.Context(), a.cfg.Curve)
			if err != nil {
				return err
			}
			return report.Points(cmd.OutOrStdout(), a.out, a.cfg.Curve, pts)
		},
	}
}

func (a *app) generatorsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "generators",
		Short: "List the points whose order equals the group order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.classification(cmd.Context())
			if err != nil {
				return err
			}
			return report.Generators(cmd.OutOrStdout(), a.out, a.cfg.Curve, c.Generators)
		},
	}
}

func (a *app) orderCommand() *cobra.Command {
	var x, y int64
	var infinity bool
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Compute the order of one point",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := a.cfg.Curve
			pt := curve.NewPoint(x, y)
			if infinity {
				pt = curve.Infinity()
			} else if !cmd.Flags().Changed("x") || !cmd.Flags().Changed("y") {
				return errors.New("--x and --y are required unless --infinity is set")
			}
			on, err := p.Contains(pt)
			if err != nil {
				return err
			}
			if !on {
				return errors.Wrapf(curve.ErrNotOnCurve, "%s on %s", pt, p)
			}
			k, err := a.finder.OrderOf(p, pt)
			if err != nil {
				return err
			}
			return report.Order(cmd.OutOrStdout(), a.out, p, pt, k)
		},
	}
	cmd.Flags().Int64Var(&x, "x", 0, "x coordinate")
	cmd.Flags().Int64Var(&y, "y", 0, "y coordinate")
	cmd.Flags().BoolVar(&infinity, "infinity", false, "use the point at infinity")
	return cmd
}

func (a *app) classifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "classify",
		Short: "Print every point with its order and the generators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.classification(cmd.Context())
			if err != nil {
				return err
			}
			return report.Classification(cmd.OutOrStdout(), a.out, c)
		},
	}
}

func (a *app) checkCommand() *cobra.Command {
	var group string
	var samples int64
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the group laws on the curve or on a reference group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var r lawcheck.Report
			var err error
			switch group {
			case "small":
				r, err = a.checkSmall(cmd)
			case "secp256k1":
				r, err = checkReference[curve.BigPoint](curve.NewSecp256k1Group(), curve.NewSecp256k1Group().Base(), samples, a.cfg.Generator.Triples, a.cfg.Generator.MaxScalar)
			case "ed25519":
				r, err = checkReference[kyber.Point](curve.NewEd25519Group(), curve.NewEd25519Group().Base(), samples, a.cfg.Generator.Triples, a.cfg.Generator.MaxScalar)
			default:
				return errors.Errorf("unknown group %q (small, secp256k1, ed25519)", group)
			}
			if err != nil {
				return err
			}
			if err := report.LawReport(cmd.OutOrStdout(), a.out, r); err != nil {
				return err
			}
			return r.Err()
		},
	}
	cmd.Flags().StringVar(&group, "group", "small", "group to check: small, secp256k1 or ed25519")
	cmd.Flags().Int64Var(&samples, "samples", 8, "number of base-point multiples sampled on reference groups")
	return cmd
}

func (a *app) checkSmall(cmd *cobra.Command) (lawcheck.Report, error) {
	p := a.cfg.Curve
	pts, err := a.scanner.Points(cmd.Context(), p)
	if err != nil {
		return lawcheck.Report{}, err
	}
	return lawcheck.Check[curve.Point](p, pts, lawcheck.Options[curve.Point]{
		Triples:   a.cfg.Generator.Triples,
		MaxScalar: a.cfg.Generator.MaxScalar,
		Contains:  p.Contains,
	}), nil
}

// checkReference samples k·base for k = 0, 7, 14, ... and checks the laws.
func checkReference[P any](g curve.Group[P], base P, n int64, triples int, maxScalar int64) (lawcheck.Report, error) {
	samples := []P{g.Identity()}
	for k := int64(1); k < n; k++ {
		kp, err := g.ScalarMult(7*k, base)
		if err != nil {
			return lawcheck.Report{}, err
		}
		samples = append(samples, kp)
	}
	return lawcheck.Check[P](g, samples, lawcheck.Options[P]{Triples: triples, MaxScalar: maxScalar}), nil
}

func (a *app) storedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stored",
		Short: "List the curves whose classification is in the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.store == nil {
				return errors.New("no store configured (use --db or store.enabled)")
			}
			params, err := a.store.ListParams()
			if err != nil {
				return err
			}
			for _, p := range params {
				fmt.Fprintln(cmd.OutOrStdout(), p.String())
			}
			return nil
		},
	}
}

