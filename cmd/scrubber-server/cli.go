package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/claimscrub/scrubber/internal/config"
	"github.com/claimscrub/scrubber/internal/domain/claim"
	"github.com/claimscrub/scrubber/internal/domain/reference"
	"github.com/claimscrub/scrubber/internal/domain/scrub"
	"github.com/claimscrub/scrubber/internal/platform/logging"
	"github.com/claimscrub/scrubber/internal/platform/validation"
)

// exitFailedChecks is the exit status of "validate" when any check fails.
const exitFailedChecks = 2

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a claim JSON document without storing it",
		Long: "Runs the claim checks against a claim document and prints the report as JSON.\n" +
			"Exits with status 2 when any check fails.",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			names, _ := cmd.Flags().GetStringSlice("checks")
			asOf, _ := cmd.Flags().GetString("as-of")

			checks := make([]scrub.CheckType, 0, len(names))
			for _, n := range names {
				t, err := scrub.ParseCheckType(n)
				if err != nil {
					return err
				}
				checks = append(checks, t)
			}

			cl, err := readClaim(file)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			var clock func() time.Time
			if asOf != "" {
				day, err := time.Parse("2006-01-02", asOf)
				if err != nil {
					return fmt.Errorf("--as-of must be YYYY-MM-DD: %w", err)
				}
				clock = func() time.Time { return day }
			}
			logger := logging.New(cmd.ErrOrStderr(), cfg.LogFormat, "warn")
			engine := newEngine(cfg, newRegistry(cfg, nil, logger), clock, logger)

			v, err := engine.Run(cmd.Context(), cl, checks)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return fmt.Errorf("encode report: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			if failed := v.FailedChecks(); len(failed) > 0 {
				names := make([]string, len(failed))
				for i, f := range failed {
					names[i] = string(f)
				}
				return &exitCodeError{
					code: exitFailedChecks,
					msg:  fmt.Sprintf("claim failed %s", strings.Join(names, ", ")),
				}
			}
			return nil
		},
	}
	cmd.Flags().String("file", "", "Path to the claim JSON document, or - for stdin")
	cmd.Flags().StringSlice("checks", nil, "Checks to run (default all)")
	cmd.Flags().String("as-of", "", "Validate as of this date (YYYY-MM-DD) instead of today")
	cmd.MarkFlagRequired("file")
	return cmd
}

// readClaim decodes and validates a claim document in the API's request
// format.
func readClaim(path string) (*claim.Claim, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read claim: %w", err)
	}

	var req claim.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("decode claim: %w", err)
	}
	if err := validation.New().Validate(&req); err != nil {
		return nil, fmt.Errorf("invalid claim: %w", err)
	}
	cl, err := req.ToClaim()
	if err != nil {
		return nil, err
	}
	claim.Normalize(cl)
	return cl, nil
}

// referenceTables maps table names to their listing.
var referenceTables = map[string]func(t *reference.Tables) interface{}{
	"denial-codes":      func(t *reference.Tables) interface{} { return t.DenialCodes() },
	"modifiers":         func(t *reference.Tables) interface{} { return t.Modifiers() },
	"payers":            func(t *reference.Tables) interface{} { return t.Payers() },
	"places-of-service": func(t *reference.Tables) interface{} { return t.PlacesOfService() },
	"specialties":       func(t *reference.Tables) interface{} { return t.Specialties() },
	"ncci-edits":        func(t *reference.Tables) interface{} { return t.NCCIEdits() },
}

func referenceTableNames() []string {
	names := make([]string, 0, len(referenceTables))
	for n := range referenceTables {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func referenceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reference",
		Short: "Inspect the packaged reference tables",
	}
	cmd.AddCommand(&cobra.Command{
		Use:       "list <table>",
		Short:     "Print a reference table as JSON",
		Long:      "Tables: " + strings.Join(referenceTableNames(), ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: referenceTableNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, ok := referenceTables[args[0]]
			if !ok {
				return fmt.Errorf("unknown table %q (have %s)", args[0], strings.Join(referenceTableNames(), ", "))
			}
			out, err := json.MarshalIndent(list(reference.Default()), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	})
	return cmd
}
