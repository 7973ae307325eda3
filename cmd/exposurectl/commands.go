package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/exposure/internal/category"
)

var errViolations = errors.New("table has consumers of flags without a use level")

func newTableCmd(opts *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the canonical category table as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, release, err := opts.codec(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			table, err := codec.Reset(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd, output, table)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

// validateReport is the output of the validate command.
type validateReport struct {
	CanCalculate bool           `json:"can_calculate"`
	Violations   []string       `json:"violations"`
	Table        []category.Row `json:"table,omitempty"`
}

func newValidateCmd(opts *options) *cobra.Command {
	var (
		output string
		fix    bool
	)

	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a table file against the consumers-of rule",
		Long:  `Reads a full table as JSON and reports rows flagged as consumers of without a use level above zero. With --fix the corrected table is included in the report. Exits non-zero when violations are found and --fix is not set.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := readTable(cmd, args[0])
			if err != nil {
				return err
			}

			canCalculate, corrected := category.Validate(table)
			report := validateReport{
				CanCalculate: canCalculate,
				Violations:   category.Violations(table),
			}
			if report.Violations == nil {
				report.Violations = []string{}
			}
			if fix {
				report.Table = corrected
			}

			if err := writeJSON(cmd, output, report); err != nil {
				return err
			}
			if len(report.Violations) > 0 && !fix {
				return fmt.Errorf("%w: %d rows", errViolations, len(report.Violations))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	cmd.Flags().BoolVar(&fix, "fix", false, "Include the corrected table and exit zero")
	return cmd
}

func newCompactCmd(opts *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "compact FILE",
		Short: "Convert a table file into an exposure input file",
		Long:  `Reads a full table as JSON, merges it onto the canonical table and writes the rows with a use level above zero in the export format.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := readTable(cmd, args[0])
			if err != nil {
				return err
			}

			codec, release, err := opts.codec(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			table, err := codec.Merge(cmd.Context(), rows)
			if err != nil {
				return err
			}

			data, err := category.EncodeExport(category.Compact(table))
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, data)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout (e.g. "+category.ExportFileName+")")
	return cmd
}

func newExpandCmd(opts *options) *cobra.Command {
	var (
		output string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "expand FILE",
		Short: "Restore a full table from an exposure input file",
		Long:  `Reads an exported exposure input file, or a data URL of one, and prints the full table with its values overlaid. Unreadable files produce the canonical table unless --strict is set.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			contents, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			codec, release, err := opts.codec(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			payload := category.DecodeUpload(contents)
			table, applied, err := codec.ExpandPayload(cmd.Context(), payload)
			if err != nil {
				return err
			}
			if !applied && strict {
				return fmt.Errorf("%s: no exposure input entries could be read", args[0])
			}
			return writeJSON(cmd, output, table)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail instead of falling back to the canonical table")
	return cmd
}

func readTable(cmd *cobra.Command, name string) ([]category.Row, error) {
	data, err := readInput(cmd, name)
	if err != nil {
		return nil, err
	}
	var rows []category.Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse table %s: %w", name, err)
	}
	return rows, nil
}

func writeJSON(cmd *cobra.Command, output string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeOutput(cmd, output, append(data, '\n'))
}
