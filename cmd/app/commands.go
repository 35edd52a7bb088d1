package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yanqian/carbonlens/internal/domain/footprint"
	"github.com/yanqian/carbonlens/internal/infra/config"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	app, cleanup, err := initializeApp(cfg)
	if err != nil {
		return fmt.Errorf("wire application: %w", err)
	}
	defer cleanup()

	if err := app.Run(ctx); err != nil {
		return fmt.Errorf("application stopped with error: %w", err)
	}
	return nil
}

// computeReport is the CLI rendering of one engine run.
type computeReport struct {
	Inputs      footprint.LifestyleInput `json:"inputs"`
	Result      footprint.Result         `json:"result"`
	Rating      string                   `json:"rating"`
	Equivalents footprint.Equivalents    `json:"equivalents"`
}

func computeCmd() *cobra.Command {
	var (
		profile string
		in      footprint.LifestyleInput
	)
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute a monthly footprint from flags or a demo profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input := in
			if profile != "" {
				p, ok := footprint.LookupProfile(profile)
				if !ok {
					return fmt.Errorf("unknown profile %q", profile)
				}
				input = p.Input
			}
			return writeCompute(cmd.OutOrStdout(), input)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&profile, "profile", "", "demo profile slug; overrides the input flags")
	flags.Float64Var(&in.ElectricityKwh, "electricity-kwh", 0, "monthly electricity use in kWh")
	flags.Float64Var(&in.NaturalGasTherms, "gas-therms", 0, "monthly natural gas use in therms")
	flags.Float64Var(&in.CarKm, "car-km", 0, "monthly car distance in km")
	flags.Float64Var(&in.BusKm, "bus-km", 0, "monthly bus distance in km")
	flags.Float64Var(&in.DietDailyKg, "diet-kg", footprint.DefaultDietDailyKg, "daily food emissions in kg CO2")
	flags.Float64Var(&in.GoodsEmissionsKg, "goods-kg", 0, "monthly goods and services emissions in kg CO2")
	flags.IntVar(&in.FlightsPerYear, "flights", 0, "flights per year")
	return cmd
}

func writeCompute(w io.Writer, in footprint.LifestyleInput) error {
	if err := footprint.Validate(in); err != nil {
		return err
	}
	result := footprint.Compute(in)
	report := computeReport{
		Inputs:      in,
		Result:      result.Rounded(),
		Rating:      footprint.Rating(result.Score),
		Equivalents: footprint.ComputeEquivalents(result.Totals.Total),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func profilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List the demo households with their scores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, p := range footprint.Profiles() {
				result := footprint.Compute(p.Input)
				if _, err := fmt.Fprintf(out, "%-16s %3d  %-10s %8.1f kg\n", p.Slug, result.Score, footprint.Rating(result.Score), result.Totals.Total); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
