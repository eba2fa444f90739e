package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/valuechain/pkg/chain"
	"github.com/matzehuels/valuechain/pkg/errors"
	"github.com/matzehuels/valuechain/pkg/render/nodelink"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string  // output file path; empty derives it from the document
	format   string  // "svg", "png", "pdf" or "dot"
	detailed bool    // add type and description to node labels
	scale    float64 // PNG scale factor
}

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{"svg": true, "png": true, "pdf": true, "dot": true}

// renderCommand creates the render command for drawing the document.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: "svg", scale: 2.0}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Draw the document as SVG, PNG, PDF or DOT",
		Long: `Draw the document with Graphviz, keeping every node at its position.

PDF output and PNG output at scales other than 1 need rsvg-convert
(librsvg): brew install librsvg (macOS), apt install librsvg2-bin (Linux).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if ext := strings.TrimPrefix(filepath.Ext(opts.output), "."); !cmd.Flags().Changed("format") && validFormats[ext] {
				opts.format = ext
			}
			if !validFormats[opts.format] {
				return errors.New(errors.ErrCodeInvalidInput, "invalid format: %s (must be 'svg', 'png', 'pdf' or 'dot')", opts.format)
			}
			return c.runRender(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, - for stdout (default: document name with the format's extension)")
	cmd.Flags().StringVar(&opts.format, "format", opts.format, "output format: svg, png, pdf, dot")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node type and description")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	ed, err := c.openEditor(ctx)
	if err != nil {
		return err
	}

	data, err := renderGraph(ctx, ed.Graph(), opts)
	if err != nil {
		return err
	}
	logger.Debugf("Generated %s: %d bytes", opts.format, len(data))

	path := opts.output
	if path == "" {
		path = strings.TrimSuffix(c.docPath(), filepath.Ext(c.docPath())) + "." + opts.format
	}

	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(data); err != nil {
		return err
	}

	if path != "-" {
		prog.done("Rendered " + path)
	}
	return nil
}

// renderGraph renders g in opts.format.
func renderGraph(ctx context.Context, g *chain.Graph, opts *renderOpts) ([]byte, error) {
	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: opts.detailed})

	switch opts.format {
	case "dot":
		return []byte(dot), nil
	case "svg":
		return nodelink.RenderSVG(ctx, dot)
	case "pdf":
		return nodelink.RenderPDF(ctx, dot)
	case "png":
		return nodelink.RenderPNG(ctx, dot, opts.scale)
	default:
		return nil, fmt.Errorf("unknown format: %s", opts.format)
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput opens path for writing, or stdout for "-".
func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	return os.Create(path)
}
