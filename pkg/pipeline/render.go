package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/powerset/pkg/automaton"
	"github.com/matzehuels/powerset/pkg/cache"
	"github.com/matzehuels/powerset/pkg/errors"
	"github.com/matzehuels/powerset/pkg/observability"
	"github.com/matzehuels/powerset/pkg/render/nodelink"
)

// Format constants for rendered output.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
)

// ValidFormats is the set of supported render formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
	FormatPNG: true,
}

// RenderOptions configures a render.
type RenderOptions struct {
	Format  string `json:"format,omitempty"`
	Origins bool   `json:"origins,omitempty"`
	Title   string `json:"title,omitempty"`
}

// ValidateFormat checks that a render format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid render format: %q (must be one of: dot, svg, png)", format)
	}
	return nil
}

// SetDefaults fills in empty fields.
func (o *RenderOptions) SetDefaults() {
	if o.Format == "" {
		o.Format = FormatSVG
	}
}

// KeyOpts returns cache key options for this render.
func (o RenderOptions) KeyOpts() cache.RenderKeyOpts {
	return cache.RenderKeyOpts{Format: o.Format, Origins: o.Origins, Title: o.Title}
}

// Render draws a as a state diagram in the requested format.
func Render(ctx context.Context, a *automaton.Automaton, opts RenderOptions) ([]byte, error) {
	opts.SetDefaults()
	if err := ValidateFormat(opts.Format); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Format)
	start := time.Now()

	dot := nodelink.ToDOT(a, nodelink.Options{Origins: opts.Origins, Title: opts.Title})
	var data []byte
	var err error
	switch opts.Format {
	case FormatDOT:
		data = []byte(dot)
	case FormatSVG:
		data, err = nodelink.RenderSVG(ctx, dot)
	case FormatPNG:
		data, err = nodelink.RenderPNG(ctx, dot)
	}

	hooks.OnRenderComplete(ctx, opts.Format, time.Since(start), err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", opts.Format)
	}
	return data, nil
}
