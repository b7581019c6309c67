package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/querybridge/querybridge/internal/schema"
)

// CatalogOptions holds flags for the catalog command.
type CatalogOptions struct {
	*RootOptions
	SchemaPath   string
	MaxLimit     int64
	DefaultLimit int64
}

// NewCatalogCommand creates the catalog command, which prints the
// operator vocabularies the schema defines.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatalogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the operator vocabularies",
		Long: `Print the three operator vocabularies the schema defines: condition
(comparison) operators, boolean group operators, and arithmetic or
aggregate expression operators. Bracket classification intersects
against these sets.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.SchemaPath, "schema", "", "schema document path (default: embedded schema)")
	cmd.Flags().Int64Var(&opts.MaxLimit, "max-limit", schema.DefaultConfig.MaxLimit, "largest permissible limit value")
	cmd.Flags().Int64Var(&opts.DefaultLimit, "default-limit", schema.DefaultConfig.DefaultLimit, "limit populated when the statement has none")

	return cmd
}

func runCatalog(opts *CatalogOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg := schema.Config{MaxLimit: opts.MaxLimit, DefaultLimit: opts.DefaultLimit}
	var s *schema.Schema
	var err error
	if opts.SchemaPath != "" {
		s, err = schema.LoadFile(opts.SchemaPath, cfg)
	} else {
		s, err = schema.Load(cfg)
	}
	if err != nil {
		var loadErr *schema.LoadError
		if errors.As(err, &loadErr) {
			_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		} else {
			_ = formatter.Error("INTERNAL", err.Error(), nil)
		}
		return WrapExitError(ExitCommandError, "loading schema", err)
	}

	catalog := s.Catalog()
	if opts.Format != "text" {
		return formatter.Success(map[string]any{
			"condition":  catalog.ConditionOperators(),
			"group":      catalog.GroupOperators(),
			"expression": catalog.ExpressionOperators(),
		})
	}

	fmt.Fprintf(formatter.Writer, "Condition operators:  %s\n", strings.Join(catalog.ConditionOperators(), " "))
	fmt.Fprintf(formatter.Writer, "Group operators:      %s\n", strings.Join(catalog.GroupOperators(), " "))
	fmt.Fprintf(formatter.Writer, "Expression operators: %s\n", strings.Join(catalog.ExpressionOperators(), " "))
	return nil
}
