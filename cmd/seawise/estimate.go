package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/seawise/seawise/pkg/fouling"
)

type estimateOptions struct {
	reading fouling.Reading
	variant string
	json    bool
}

func newEstimateCmd() *cobra.Command {
	opts := estimateOptions{}
	r := &opts.reading

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate fouling for one set of conditions",
		Long: `Estimate hull fouling coverage, fuel penalty and speed loss for a
single reading. Sea temperature and salinity are required; every other
input falls back to its default.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if r.DaysSinceClean < 0 {
				return fmt.Errorf("--days must not be negative")
			}
			return runEstimate(cmd.OutOrStdout(), opts)
		},
	}

	f := cmd.Flags()
	f.Float64Var(&r.SeaTemperatureC, "temp", 0, "sea temperature, °C (required)")
	f.Float64Var(&r.SalinityPSU, "salinity", 0, "salinity, PSU (required)")
	f.Float64Var(&r.VesselSpeedKnots, "speed", fouling.DefaultVesselSpeedKnots, "vessel speed, knots")
	f.Float64Var(&r.IdleHours, "idle", fouling.DefaultIdleHours, "idle hours in the last day")
	f.IntVar(&r.DaysSinceClean, "days", fouling.DefaultDaysSinceClean, "days since the last hull cleaning")
	f.Float64Var(&r.ChlorophyllAMgM3, "chlorophyll", fouling.DefaultChlorophyllA, "chlorophyll-a, mg/m³")
	f.Float64Var(&r.WindSpeedMps, "wind", fouling.DefaultWindSpeedMps, "wind speed, m/s")
	f.Float64Var(&r.CurrentSpeedMps, "current", fouling.DefaultCurrentSpeedMps, "current speed, m/s")
	f.StringVar(&opts.variant, "variant", fouling.VariantEnhanced, "estimator variant: enhanced | baseline")
	f.BoolVar(&opts.json, "json", false, "print JSON instead of text")
	_ = cmd.MarkFlagRequired("temp")
	_ = cmd.MarkFlagRequired("salinity")

	return cmd
}

func runEstimate(w io.Writer, opts estimateOptions) error {
	est, err := fouling.Lookup(opts.variant)
	if err != nil {
		return err
	}
	slog.Debug("estimating", "variant", est.Name(), "reading", opts.reading)

	p := est.Estimate(opts.reading)
	if opts.json {
		return writeJSON(w, struct {
			Variant    string             `json:"variant"`
			Reading    fouling.Reading    `json:"reading"`
			Prediction fouling.Prediction `json:"prediction"`
		}{est.Name(), opts.reading, p})
	}

	advice := "no"
	if p.RecommendedCleaning {
		advice = "yes"
	}
	fmt.Fprintf(w, "variant:          %s\n", est.Name())
	fmt.Fprintf(w, "fouling:          %.2f%% (%s)\n", p.FoulingPercent, p.FoulingClass)
	fmt.Fprintf(w, "fuel penalty:     %.2f%%\n", p.FuelPenaltyPercent)
	fmt.Fprintf(w, "speed reduction:  %.2f%%\n", p.SpeedReductionPercent)
	fmt.Fprintf(w, "daily growth:     %.2f%%\n", p.DailyGrowthRatePercent)
	fmt.Fprintf(w, "clean hull:       %s\n", advice)
	return nil
}
