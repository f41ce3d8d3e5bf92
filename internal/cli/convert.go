package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/powerset/pkg/automaton"
	pkgio "github.com/matzehuels/powerset/pkg/io"
	"github.com/matzehuels/powerset/pkg/pipeline"
)

// transformOpts holds the command-line flags shared by convert and minimize.
type transformOpts struct {
	output    string // output file (stdout if empty)
	inFormat  string // input format override
	outFormat string // output format (default: output extension, else json)
	maxStates int    // NFA state limit
	refresh   bool   // bypass cached results
	noCache   bool   // disable caching entirely
	table     bool   // print a transition table instead of a definition
}

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	return c.transformCommand(pipeline.OpConvert, "Determinize an NFA by subset construction",
		`Convert an NFA definition into an equivalent DFA.

DFA states are numbered in discovery order starting at 0 for the epsilon
closure of the start state. Sets of NFA states that are never reached do not
appear, and the empty set is never a state: missing transitions mean reject.

Examples:
  powerset convert nfa.json
  powerset convert nfa.yaml -o dfa.json
  cat nfa.json | powerset convert - --table`)
}

// minimizeCommand creates the minimize command.
func (c *CLI) minimizeCommand() *cobra.Command {
	return c.transformCommand(pipeline.OpMinimize, "Determinize and minimize an automaton",
		`Minimize an automaton definition.

The input is determinized first (a DFA passes through unchanged), then
unreachable states are dropped and equivalent states merged. Each merged
state keeps the smallest id of its class.

Examples:
  powerset minimize nfa.json
  powerset minimize dfa.toml -o min.toml`)
}

func (c *CLI) transformCommand(op, short, long string) *cobra.Command {
	opts := transformOpts{maxStates: pipeline.DefaultMaxStates}

	cmd := &cobra.Command{
		Use:   op + " [file|-]",
		Short: short,
		Long:  long,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("max-states") {
				opts.maxStates = c.Config.Limits.MaxStates
			}
			return c.runTransform(cmd.Context(), cmd, op, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&opts.inFormat, "input-format", "", "input format: json, yaml, toml (default: from extension)")
	cmd.Flags().StringVarP(&opts.outFormat, "format", "f", "", "output format: json, yaml, toml (default: from output extension)")
	cmd.Flags().IntVar(&opts.maxStates, "max-states", opts.maxStates, "maximum number of NFA states")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached results")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.table, "table", false, "print a transition table")

	return cmd
}

// runTransform loads the definition, runs the pipeline, and writes the result.
func (c *CLI) runTransform(ctx context.Context, cmd *cobra.Command, op, input string, opts transformOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	def, err := readDef(cmd.InOrStdin(), input, opts.inFormat)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	res, err := runner.Execute(ctx, pipeline.Options{
		Operation: op,
		Def:       def,
		MaxStates: opts.maxStates,
		Refresh:   opts.refresh,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("%s %s", pastTense(op), inputName(input)))

	out := cmd.OutOrStdout()
	if opts.table {
		fmt.Fprintln(out, transitionTable(res.DFA))
		printStats(out, res.Stats, res.CacheHit)
		return nil
	}

	format, err := outputFormat(opts.output, opts.outFormat)
	if err != nil {
		return err
	}
	if opts.output == "" {
		return pkgio.WriteAutomaton(res.DFA, out, format)
	}

	if err := writeDefFile(automaton.ToDef(res.DFA), opts.output, format); err != nil {
		return err
	}
	printSuccess(out, "%s %d states", pastTense(op), res.DFA.NumStates())
	if n := len(res.Warnings); n > 0 {
		printWarning(out, "%d definition entries dropped", n)
	}
	printStats(out, res.Stats, res.CacheHit)
	printFile(out, opts.output)
	return nil
}

// outputFormat resolves the output format from the flag, then the output
// file extension, then JSON.
func outputFormat(output, flag string) (pkgio.Format, error) {
	if flag != "" {
		return pkgio.ParseFormat(flag)
	}
	if output != "" {
		return pkgio.FormatFromPath(output), nil
	}
	return pkgio.JSON, nil
}

func writeDefFile(def automaton.Def, path string, format pkgio.Format) error {
	return writeFile(path, func(w io.Writer) error {
		return pkgio.WriteDef(def, w, format)
	})
}

// writeFile creates path and fills it with write.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func pastTense(op string) string {
	switch op {
	case pipeline.OpConvert:
		return "Converted"
	case pipeline.OpMinimize:
		return "Minimized"
	}
	return op
}
