// Package main provides a CLI that parses a pricing workbook, validates it
// and prints the document, its validation report and rendered totals as JSON.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"ancpricing/internal/config"
	"ancpricing/internal/csvexport"
	"ancpricing/internal/domain"
	"ancpricing/internal/service"
	"ancpricing/internal/totals"
	"ancpricing/internal/validator"
)

var (
	sheet     string
	strict    bool
	precision int32
	pretty    bool
	overrides []string
	csvPath   string
)

// result is the JSON written to stdout.
type result struct {
	Document         *domain.PricingDocument  `json:"document"`
	ValidationReport *domain.ValidationReport `json:"validationReport"`
	Totals           *domain.DocumentTotals   `json:"totals"`
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "pricingcheck [input.xlsx]",
		Short: "Parse and validate a pricing workbook",
		Long: `pricingcheck locates the pricing sheet of a workbook, segments it into
tables, cross-checks the recorded subtotals and grand totals, and prints the
result with rendered totals as JSON.`,
		Args:          cobra.ExactArgs(1),
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Flags().StringVar(&sheet, "sheet", "", "Sheet to try first")
	rootCmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when validation fails")
	rootCmd.Flags().Int32Var(&precision, "precision", -1, "Display precision (default from PRICING_PRICING_DISPLAY_PRECISION)")
	rootCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	rootCmd.Flags().StringArrayVar(&overrides, "override", nil, "Price override as <tableId>:<itemIndex>=<price> (repeatable)")
	rootCmd.Flags().StringVar(&csvPath, "csv", "", "Also write rendered totals as CSV to this path")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pricingcheck:", err)
		if errors.Is(err, domain.ErrValidationFailed) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if precision >= 0 {
		cfg.Pricing.DisplayPrecision = precision
	}
	if strict {
		cfg.Pricing.StrictDefault = true
	}

	overrideMap, err := parseOverrideFlags(overrides)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	opts := cfg.Pricing.ParseOptions()
	engine := validator.NewEngine(validator.DefaultRegistry(), cfg.Pricing.DisplayPrecision)
	analysis, checkErr := service.NewAnalyzer(opts, engine).Analyze(cmd.Context(), data, sheet, cfg.Pricing.DefaultMode())
	if analysis == nil {
		return checkErr
	}

	dt := totals.New(cfg.Pricing.DisplayPrecision).DocumentTotals(analysis.Document, overrideMap)
	out := result{Document: analysis.Document, ValidationReport: analysis.Report, Totals: &dt}

	var encoded []byte
	if pretty {
		encoded, err = json.MarshalIndent(out, "", "  ")
	} else {
		encoded, err = json.Marshal(out)
	}
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Println(string(encoded))

	if csvPath != "" {
		if err := writeCSV(csvPath, analysis.Document, &dt); err != nil {
			return err
		}
	}
	return checkErr
}

// parseOverrideFlags turns "table-1:0=99999" flags into wire keys.
func parseOverrideFlags(flags []string) (domain.PriceOverrideMap, error) {
	raw := make(map[string]float64, len(flags))
	for _, f := range flags {
		key, value, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("override %q: expected <tableId>:<itemIndex>=<price>", f)
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("override %q: invalid price: %w", f, err)
		}
		raw[strings.TrimSpace(key)] = price
	}
	return totals.ParseOverrides(raw)
}

func writeCSV(path string, doc *domain.PricingDocument, dt *domain.DocumentTotals) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	if err := csvexport.Export(f, doc, dt); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
