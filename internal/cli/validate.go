package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/driftcrew/internal/catalog"
	"github.com/roach88/driftcrew/internal/dice"
	"github.com/roach88/driftcrew/internal/tables"
)

// ValidationError is one problem found in the game data.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Tables string            `json:"tables"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Catalog string
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate [tables.cue]",
		Short: "Validate roll tables and the item catalog",
		Long: `Validate the CUE roll tables and the YAML item catalog.

Tables are checked against their CUE schema and compiled into dice tables,
which rejects gaps and overlaps in roll ranges. Every item a table can
award must exist in the catalog. Without arguments the configured (or
bundled) tables and catalog are validated.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.Config.Tables
			if len(args) == 1 {
				path = args[0]
			}
			return runValidate(opts, path, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "item catalog YAML (default: config catalog, else bundled)")

	return cmd
}

func runValidate(opts *ValidateOptions, tablesPath string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	var (
		set *tables.Set
		err error
	)
	name := tablesPath
	if tablesPath == "" {
		name = "bundled"
		set, err = tables.Load(tables.Source(), "tables.cue")
	} else {
		set, err = tables.LoadFile(tablesPath)
	}
	if err != nil {
		return outputValidationErrors(formatter, name, []ValidationError{tableError(err)})
	}
	formatter.VerboseLog("Loaded tables from %s", name)

	catalogPath := opts.Catalog
	if catalogPath == "" {
		catalogPath = opts.Config.Catalog
	}
	items := catalog.Default()
	if catalogPath != "" {
		if items, err = catalog.LoadFile(catalogPath); err != nil {
			return outputValidateError(formatter, ErrCodeCatalog, err.Error(), nil)
		}
		formatter.VerboseLog("Loaded catalog from %s", catalogPath)
	}

	if errs := crossCheck(set, items); len(errs) > 0 {
		return outputValidationErrors(formatter, name, errs)
	}

	// Output success
	if formatter.JSON() {
		return formatter.Success(ValidationResult{Valid: true, Tables: name})
	}
	fmt.Fprintf(formatter.Writer, "%s Tables and catalog valid (%s)\n", okMark, name)
	return nil
}

func tableError(err error) ValidationError {
	var le *tables.LoadError
	if errors.As(err, &le) {
		line := 0
		if le.Pos.IsValid() {
			line = le.Pos.Line()
		}
		return ValidationError{Field: le.Table, Message: le.Message, Code: ErrCodeTables, Line: line}
	}
	return ValidationError{Field: "tables", Message: err.Error(), Code: ErrCodeTables}
}

// crossCheck reports table rows that award items missing from the catalog.
func crossCheck(set *tables.Set, items *catalog.Static) []ValidationError {
	var errs []ValidationError
	missing := func(field, id string) {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("unknown item %q", id),
			Code:    ErrCodeCatalog,
		})
	}

	for _, e := range set.Trade.Entries() {
		for _, id := range e.Row.Items {
			if _, ok := items.Find(id); !ok {
				missing("trade."+e.Row.ID, id)
			}
		}
	}
	events := []struct {
		name  string
		table *dice.Table[tables.EventRow]
	}{
		{"character_event", set.CharacterEvent},
		{"campaign_event", set.CampaignEvent},
	}
	for _, ev := range events {
		for _, e := range ev.table.Entries() {
			if e.Row.Item == "" {
				continue
			}
			if _, ok := items.Find(e.Row.Item); !ok {
				missing(ev.name+"."+e.Row.ID, e.Row.Item)
			}
		}
	}
	for _, name := range []string{tables.PurchaseGear, tables.PurchaseMilitary, tables.PurchaseGadget} {
		for _, e := range set.Purchase[name].Entries() {
			if e.Row.Item == "" {
				continue
			}
			if _, ok := items.Lookup(e.Row.Kind, e.Row.Item); !ok {
				missing(fmt.Sprintf("%s.%d-%d", name, e.Low, e.High), e.Row.Item)
			}
		}
	}
	return errs
}

// outputValidateError outputs a single validation error.
func outputValidateError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	// Unreadable inputs are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, name string, errs []ValidationError) error {
	if formatter.JSON() {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Tables: name, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintf(formatter.Writer, "%s Validation failed (%s)\n", failMark, name)
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
