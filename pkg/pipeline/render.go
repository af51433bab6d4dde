package pipeline

import (
	"fmt"

	"github.com/matzehuels/motifscope/pkg/render/pixel/sink"
)

// Render generates output artifacts in the requested formats, keyed by
// format.
func Render(v *View, opts Options) (map[string][]byte, error) {
	sinkOpts := buildSinkOptions(v, opts)
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(v.Grid, sinkOpts...)
		case FormatPNG:
			data, err = sink.RenderPNG(v.Grid, append(sinkOpts, sink.WithScale(DefaultPNGScale))...)
		case FormatJSON:
			data, err = sink.RenderJSON(v.Grid, sinkOpts...)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func buildSinkOptions(v *View, opts Options) []sink.Option {
	out := []sink.Option{
		sink.WithView(v.Name),
		sink.WithViewport(v.Transform),
	}
	if opts.Title != "" {
		out = append(out, sink.WithTitle(opts.Title))
	}
	if opts.Interactive != "" {
		out = append(out, sink.WithInteraction(opts.Interactive))
	}
	if len(v.Selected) > 0 {
		out = append(out, sink.WithSelected(v.Selected...))
	}
	return out
}
