package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/powerset/pkg/automaton"
	"github.com/matzehuels/powerset/pkg/pipeline"
)

// Stages that can be rendered.
const (
	stageNFA = "nfa" // validated input
	stageDFA = "dfa" // subset construction
	stageMin = "min" // minimal DFA
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string   // output file (single format), base path (multiple), or "-" for stdout
	formats   []string // output formats: "dot", "svg", "png"
	stage     string   // which automaton to draw
	origins   bool     // label DFA states with their origin sets
	title     string   // diagram caption
	maxStates int      // NFA state limit
	noCache   bool     // disable caching
}

// renderCommand creates the render command for drawing state diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{stage: stageDFA, maxStates: pipeline.DefaultMaxStates}

	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Render an automaton as a state diagram",
		Long: `Render an automaton as a state diagram.

The --stage flag selects what to draw: the validated input (nfa), its subset
construction (dfa, default), or the minimal DFA (min). Diagrams are produced
in-process with Graphviz as DOT, SVG, or PNG.

Without --output, files are named after the input (nfa.json → nfa.svg).
Use --output - to write a single format to stdout.

Examples:
  powerset render nfa.json
  powerset render nfa.json --stage min -f svg,png --origins
  powerset render nfa.yaml -f dot -o -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			for _, f := range opts.formats {
				if err := pipeline.ValidateFormat(f); err != nil {
					return err
				}
			}
			if err := validateStage(opts.stage); err != nil {
				return err
			}
			if opts.output == "-" && len(opts.formats) > 1 {
				return fmt.Errorf("--output - needs a single format, got %d", len(opts.formats))
			}
			if !cmd.Flags().Changed("max-states") {
				opts.maxStates = c.Config.Limits.MaxStates
			}
			return c.runRender(cmd.Context(), cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format), base path (multiple), or - for stdout")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, png (comma-separated)")
	cmd.Flags().StringVar(&opts.stage, "stage", opts.stage, "stage to draw: nfa, dfa (default), min")
	cmd.Flags().BoolVar(&opts.origins, "origins", false, "label generated states with their origin sets")
	cmd.Flags().StringVar(&opts.title, "title", "", "diagram title")
	cmd.Flags().IntVar(&opts.maxStates, "max-states", opts.maxStates, "maximum number of NFA states")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

func validateStage(s string) error {
	switch s {
	case stageNFA, stageDFA, stageMin:
		return nil
	}
	return fmt.Errorf("invalid stage: %s (must be 'nfa', 'dfa', or 'min')", s)
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a render extension (.svg, .png, .dot), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		if input == "-" {
			return "automaton"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// runRender builds the requested stage and writes one file per format.
func (c *CLI) runRender(ctx context.Context, cmd *cobra.Command, input string, opts renderOpts) error {
	logger := loggerFromContext(ctx)

	def, err := readDef(cmd.InOrStdin(), input, "")
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	a, err := c.buildStage(ctx, runner, def, opts)
	if err != nil {
		return err
	}
	logger.Debug("rendering", "stage", opts.stage, "states", a.NumStates(), "formats", opts.formats)

	out := cmd.OutOrStdout()
	base := basePath(opts.output, input)
	for _, format := range opts.formats {
		spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", format))
		spinner.Start()
		data, cacheHit, err := runner.RenderWithCacheInfo(ctx, a, pipeline.RenderOptions{
			Format:  format,
			Origins: opts.origins,
			Title:   opts.title,
		})
		spinner.Stop()
		if err != nil {
			return fmt.Errorf("render %s: %w", format, err)
		}

		if opts.output == "-" {
			_, err := out.Write(data)
			return err
		}

		path := base + "." + format
		if len(opts.formats) == 1 && opts.output != "" {
			path = opts.output
		}
		if err := writeFile(path, func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}); err != nil {
			return err
		}
		logger.Debug("wrote diagram", "path", path, "bytes", len(data), "cached", cacheHit)
		printFile(out, path)
	}
	return nil
}

// buildStage produces the automaton the --stage flag names.
func (c *CLI) buildStage(ctx context.Context, runner *pipeline.Runner, def automaton.Def, opts renderOpts) (*automaton.Automaton, error) {
	pipeOpts := pipeline.Options{
		Operation: pipeline.OpConvert,
		Def:       def,
		MaxStates: opts.maxStates,
		Logger:    loggerFromContext(ctx),
	}
	switch opts.stage {
	case stageNFA:
		if err := pipeOpts.Validate(); err != nil {
			return nil, err
		}
		res, err := pipeline.Parse(ctx, def)
		if err != nil {
			return nil, err
		}
		for _, w := range res.Warnings {
			pipeOpts.Logger.Warn("dropped from definition", "kind", w.Kind, "detail", w.Message)
		}
		return res.NFA, nil
	case stageMin:
		pipeOpts.Operation = pipeline.OpMinimize
	}

	res, err := runner.Execute(ctx, pipeOpts)
	if err != nil {
		return nil, err
	}
	return res.DFA, nil
}
