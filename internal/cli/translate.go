package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/querybridge/querybridge/internal/ast"
	"github.com/querybridge/querybridge/internal/querydoc"
	"github.com/querybridge/querybridge/internal/schema"
	"github.com/querybridge/querybridge/internal/sqlparser"
	"github.com/querybridge/querybridge/internal/translate"
)

// TranslateOptions holds flags for the translate command.
type TranslateOptions struct {
	*RootOptions
	Resource     string // external resource id, mutually exclusive with FROM
	AllowJoins   bool
	SchemaPath   string // schema document on disk; empty selects the embedded one
	MaxLimit     int64
	DefaultLimit int64
	MaxDepth     int
	ASTInput     bool // argument is a JSON statement file ("-" for stdin)
}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TranslateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "translate <sql>",
		Short: "Translate a SELECT statement into a query document",
		Long: `Translate a SELECT statement into a schema-validated query document.

The statement is parsed, its tree is translated clause by clause, and
the assembled document is populated with schema defaults and validated
before being printed. A payload starting with '[' is recognized as the
legacy bracketed format and passed through untranslated.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Errors get our own output, not usage text
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Resource, "resource", "r", "", "resource id to query (replaces the FROM clause)")
	cmd.Flags().BoolVar(&opts.AllowJoins, "allow-joins", false, "admit multi-resource FROM clauses (translation still unimplemented)")
	cmd.Flags().StringVar(&opts.SchemaPath, "schema", "", "schema document path (default: embedded schema)")
	cmd.Flags().Int64Var(&opts.MaxLimit, "max-limit", schema.DefaultConfig.MaxLimit, "largest permissible limit value")
	cmd.Flags().Int64Var(&opts.DefaultLimit, "default-limit", schema.DefaultConfig.DefaultLimit, "limit populated when the statement has none")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", translate.DefaultMaxDepth, "maximum tree nesting depth")
	cmd.Flags().BoolVar(&opts.ASTInput, "ast", false, "treat the argument as a JSON statement file instead of SQL ('-' reads stdin)")

	return cmd
}

func runTranslate(opts *TranslateOptions, arg string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
		TraceID:   uuid.Must(uuid.NewV7()).String(),
	}
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	// Legacy bracketed payloads are detected before any parsing and
	// passed through with a notice instead of being translated.
	if !opts.ASTInput && isLegacyPayload(arg) {
		formatter.VerboseLog("legacy bracketed payload detected; passing through untranslated")
		fmt.Fprintln(cmd.ErrOrStderr(), "notice: legacy bracketed payload, returned untranslated")
		fmt.Fprintln(cmd.OutOrStdout(), arg)
		return nil
	}

	stmt, err := loadStatement(opts, arg)
	if err != nil {
		return outputTranslateError(formatter, err)
	}
	logger.Debug("statement parsed",
		"select", len(stmt.Select), "from", len(stmt.From), "where", len(stmt.Where))

	s, err := loadSchema(opts)
	if err != nil {
		return outputTranslateError(formatter, err)
	}
	logger.Debug("schema loaded",
		"condition_ops", len(s.Catalog().ConditionOperators()),
		"group_ops", len(s.Catalog().GroupOperators()),
		"expression_ops", len(s.Catalog().ExpressionOperators()))

	builder := translate.NewBuilder(s.Catalog(), opts.AllowJoins, opts.MaxDepth)
	doc, err := builder.Build(stmt, opts.Resource)
	if err != nil {
		return outputTranslateError(formatter, err)
	}

	final, err := querydoc.Finalize(doc, s)
	if err != nil {
		return outputTranslateError(formatter, err)
	}

	payload, err := final.AsMap()
	if err != nil {
		return outputTranslateError(formatter, err)
	}
	return formatter.Success(payload)
}

func loadStatement(opts *TranslateOptions, arg string) (*ast.Statement, error) {
	if !opts.ASTInput {
		return sqlparser.Parse(arg)
	}

	var data []byte
	var err error
	if arg == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(arg)
	}
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "reading statement input", err)
	}
	return ast.DecodeStatement(data)
}

func loadSchema(opts *TranslateOptions) (*schema.Schema, error) {
	cfg := schema.Config{MaxLimit: opts.MaxLimit, DefaultLimit: opts.DefaultLimit}
	if opts.SchemaPath != "" {
		return schema.LoadFile(opts.SchemaPath, cfg)
	}
	return schema.Load(cfg)
}

// isLegacyPayload reports whether the input is the bracketed legacy
// format rather than SQL text.
func isLegacyPayload(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), "[")
}

// newLogger builds the diagnostic logger; non-verbose runs log nothing.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// outputTranslateError reports err in the configured format and maps it
// to an exit code: translation and validation failures exit 1, command
// problems (unreadable schema, bad flags) exit 2.
func outputTranslateError(formatter *OutputFormatter, err error) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		_ = formatter.Error("COMMAND_ERROR", exitErr.Error(), nil)
		return exitErr
	}

	code, details, exit := classifyError(err)
	_ = formatter.Error(code, err.Error(), details)
	return WrapExitError(exit, err.Error(), err)
}

// classifyError maps domain errors to response codes and exit codes.
func classifyError(err error) (code string, details any, exit int) {
	if c := translate.CodeOf(err); c != "" {
		var te *translate.Error
		errors.As(err, &te)
		return string(c), te.Context, ExitFailure
	}

	var parseErr *sqlparser.ParseError
	if errors.As(err, &parseErr) {
		return "PARSE_ERROR", map[string]any{"position": parseErr.Position, "token": parseErr.Token}, ExitFailure
	}

	var validationErr *schema.ValidationError
	if errors.As(err, &validationErr) {
		return "SCHEMA_VALIDATION", validationErr.Errors, ExitFailure
	}

	var loadErr *schema.LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, nil, ExitCommandError
	}

	return "INTERNAL", nil, ExitCommandError
}
