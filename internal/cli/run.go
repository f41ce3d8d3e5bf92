package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/powerset/pkg/automaton/transform"
	"github.com/matzehuels/powerset/pkg/pipeline"
)

// runOpts holds the command-line flags for the run command.
type runOpts struct {
	interactive bool // open the simulator instead of checking words
	minimal     bool // walk the minimal DFA instead of the subset construction
	noCache     bool // disable caching
}

// runCommand creates the run command for checking words against an automaton.
func (c *CLI) runCommand() *cobra.Command {
	var opts runOpts

	cmd := &cobra.Command{
		Use:   "run [file|-] [word...]",
		Short: "Check which words an automaton accepts",
		Long: `Check which words an automaton accepts.

Each word is split into alphabet symbols, longer symbols first, so "ab" over the
alphabet {a, b} is the two-symbol word a·b. An empty argument is the empty
word. For every word the DFA path is shown next to the verdict.

With --interactive, a simulator shows the path as you type.

Examples:
  powerset run nfa.json ab aab ba ""
  powerset run nfa.json --interactive`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.interactive && len(args) > 1 {
				return fmt.Errorf("--interactive takes no words, got %d", len(args)-1)
			}
			return c.runWords(cmd.Context(), cmd, args[0], args[1:], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "simulate interactively")
	cmd.Flags().BoolVar(&opts.minimal, "minimal", false, "walk the minimal DFA")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runWords builds the DFA and checks each word, or starts the simulator.
func (c *CLI) runWords(ctx context.Context, cmd *cobra.Command, input string, words []string, opts runOpts) error {
	def, err := readDef(cmd.InOrStdin(), input, "")
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	op := pipeline.OpConvert
	if opts.minimal {
		op = pipeline.OpMinimize
	}
	res, err := runner.Execute(ctx, pipeline.Options{
		Operation: op,
		Def:       def,
		MaxStates: c.Config.Limits.MaxStates,
		Logger:    loggerFromContext(ctx),
	})
	if err != nil {
		return err
	}

	if opts.interactive {
		_, err := tea.NewProgram(NewSimulatorModel(res.DFA), tea.WithContext(ctx)).Run()
		return err
	}

	logger := loggerFromContext(ctx)
	out := cmd.OutOrStdout()
	for _, word := range words {
		w := walkDFA(res.DFA, word)
		if w.reason == "" || w.symbols != nil {
			// The DFA walk and the NFA simulation must agree.
			if nfa := transform.Accepts(res.NFA, w.symbols); nfa != w.accepted {
				logger.Error("DFA and NFA disagree", "word", word, "nfa", nfa, "dfa", w.accepted)
			}
		}
		display := word
		if display == "" {
			display = "ε"
		}
		fmt.Fprintf(out, "%s  %s  %s\n", w.verdict(), StyleValue.Render(display), StyleDim.Render(w.path()))
	}
	return nil
}
