package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/ahghee/internal/compiler"
	"github.com/roach88/ahghee/internal/parser"
	"github.com/roach88/ahghee/internal/queryir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	File     string // read commands from a file ("-" for stdin)
	Output   string // output file path
	Validate bool   // report pipeline portability warnings
}

// CompilationResult holds the compiled commands.
type CompilationResult struct {
	Commands []*compiler.Compiled `json:"commands"`
	Warnings []string             `json:"warnings,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile [commands...]",
		Short: "Compile DSL commands without running them",
		Long: `Compile DSL commands and print the result as JSON: the materialized
nodes of a put, or the ids and pipeline of a get. Nothing is stored.

With --validate, get pipelines are checked for stages a storage backend
cannot evaluate itself or that can never produce results.

Examples:
  ahghee compile 'put {"id": "n1", "kvps": {"age": 42}}'
  ahghee compile --validate 'get "n1" | where ("age" > 25)'
  ahghee compile -f commands.ahg -o compiled.json`,
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "read commands from file (- for stdin)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().BoolVar(&opts.Validate, "validate", false, "report pipeline portability warnings")

	return cmd
}

func runCompile(opts *CompileOptions, args []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	input, err := readInput(opts.File, args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	cmds, err := parser.Parse(input)
	if err != nil {
		return outputCompileError(formatter, ErrCodeSyntax, err.Error(), nil)
	}
	formatter.VerboseLog("Parsed %d command(s)", len(cmds))

	// Collect every compile error rather than stopping at the first
	result := &CompilationResult{Commands: make([]*compiler.Compiled, 0, len(cmds))}
	var compileErrs []error
	for _, c := range cmds {
		compiled, err := compiler.Compile(c)
		if err != nil {
			compileErrs = append(compileErrs, err)
			continue
		}
		formatter.VerboseLog("Compiled %s: %s", c.Kind, c.Text)
		result.Commands = append(result.Commands, compiled)

		if opts.Validate && compiled.Get != nil {
			for _, w := range queryir.Validate(compiled.Get.Pipeline).Warnings {
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %s", c.Text, w))
			}
		}
	}

	if len(compileErrs) > 0 {
		return outputCompileErrors(formatter, compileErrs)
	}

	if opts.Output != "" {
		if err := writeCompiledToFile(result, opts.Output); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

// outputCompileSuccess prints each compiled command as indented JSON,
// followed by any warnings.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	for _, compiled := range result.Commands {
		data, err := json.MarshalIndent(compiled, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling %s: %w", compiled.Text, err)
		}
		fmt.Fprintf(formatter.Writer, "%s\n", data)
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(formatter.Writer, "warning: %s\n", w)
	}

	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "Wrote %d compiled command(s) to %s\n", len(result.Commands), outputFile)
	}
	formatter.VerboseLog("\u2713 Compiled %d command(s)", len(result.Commands))

	return nil
}

// outputCompileError outputs a single compilation error.
func outputCompileError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	// Compilation errors are command-level errors (exit code 2)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}

// outputCompileErrors outputs multiple compilation errors.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	if formatter.Format == "json" {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			cliErrors[i] = compileCLIError(err)
		}

		response := CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors, // Include all errors in data
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "\u2717 Compilation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		cliErr := compileCLIError(err)
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", cliErr.Code, cliErr.Message)
	}

	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// compileCLIError describes a compile error, carrying its kind and
// stage as details.
func compileCLIError(err error) CLIError {
	out := CLIError{Code: ErrorCode(err), Message: err.Error()}
	var compileErr *compiler.Error
	if errors.As(err, &compileErr) {
		details := map[string]any{"kind": compileErr.Kind.String()}
		if compileErr.Stage != "" {
			details["stage"] = compileErr.Stage
		}
		if compileErr.Pos.IsValid() {
			details["line"] = compileErr.Pos.Line
			details["col"] = compileErr.Pos.Col
		}
		out.Details = details
	}
	return out
}

// writeCompiledToFile writes the compiled commands as indented JSON.
func writeCompiledToFile(result *CompilationResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling compiled commands: %w", err)
	}

	if err := os.WriteFile(filename, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}
