// File: cmd/compute.go
package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	jsoniter "github.com/json-iterator/go"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/stylebox/internal/browser/dom"
	"github.com/xkilldash9x/stylebox/internal/browser/layout"
	"github.com/xkilldash9x/stylebox/internal/browser/parser"
	"github.com/xkilldash9x/stylebox/internal/browser/units"
	"github.com/xkilldash9x/stylebox/internal/config"
	"github.com/xkilldash9x/stylebox/internal/observability"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// NodeOutput is one laid out element in command output.
type NodeOutput struct {
	ID    dom.NodeID  `json:"id"`
	Tag   string      `json:"tag"`
	XPath string      `json:"xpath"`
	Rect  layout.Rect `json:"rect"`
}

// DocumentOutput is the layout of one HTML document.
type DocumentOutput struct {
	Source   string         `json:"source"`
	Viewport ViewportOutput `json:"viewport"`
	Document layout.Size    `json:"document_size"`
	Metrics  layout.Metrics `json:"metrics"`
	Nodes    []NodeOutput   `json:"nodes"`
}

// ViewportOutput echoes the viewport a document was laid out against.
type ViewportOutput struct {
	Width            float32 `json:"width"`
	Height           float32 `json:"height"`
	RootFontSize     float32 `json:"root_font_size"`
	Zoom             float32 `json:"zoom"`
	DevicePixelRatio float32 `json:"device_pixel_ratio"`
}

// layoutOptions are the per-invocation inputs shared by compute and batch.
type layoutOptions struct {
	cssFile string
	xpath   string
}

func newComputeCmd() *cobra.Command {
	var (
		opts   layoutOptions
		output string
		pretty bool
	)

	computeCmd := &cobra.Command{
		Use:   "compute <file.html>",
		Short: "Lay out an HTML document and print the box of every element as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromContext(cmd.Context())
			if err != nil {
				return err
			}
			logger := observability.Component("compute")

			engine := layout.NewEngine(cfg.Layout(), layout.WithLogger(logger))
			out, err := layoutFile(engine, args[0], opts, viewportFromConfig(cfg.Viewport()))
			if err != nil {
				return err
			}
			logger.Info("Layout computed",
				zap.String("source", out.Source),
				zap.Int("nodes", out.Metrics.NodeCount),
				zap.Duration("elapsed", out.Metrics.Elapsed),
			)
			return writeJSON(cmd.OutOrStdout(), output, out, pretty)
		},
	}

	computeCmd.Flags().StringVar(&opts.cssFile, "css", "", "extra stylesheet applied after the document's own <style> blocks")
	computeCmd.Flags().StringVar(&opts.xpath, "xpath", "", "only report elements matching this XPath expression")
	computeCmd.Flags().StringVarP(&output, "output", "o", "", "write JSON to this file instead of stdout")
	computeCmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
	addLayoutFlags(computeCmd)
	return computeCmd
}

// addLayoutFlags registers the flags that override viewport and engine
// configuration. See flagKeys for the keys they bind to.
func addLayoutFlags(cmd *cobra.Command) {
	cmd.Flags().Float32("width", 0, "viewport width in CSS pixels")
	cmd.Flags().Float32("height", 0, "viewport height in CSS pixels")
	cmd.Flags().Float32("root-font-size", 0, "root font size in pixels")
	cmd.Flags().Float32("zoom", 0, "page zoom factor")
	cmd.Flags().Float32("dpr", 0, "device pixel ratio")
	cmd.Flags().Bool("incremental", true, "reuse the solver tree for dirty-only passes")
	cmd.Flags().Bool("culling", true, "count boxes that fall outside the viewport")
	cmd.Flags().Bool("ua-styles", true, "apply the built-in user-agent stylesheet")
}

func viewportFromConfig(vc config.ViewportConfig) units.Viewport {
	return units.Viewport{
		Width:            vc.Width,
		Height:           vc.Height,
		RootFontSize:     vc.RootFontSize,
		Zoom:             vc.Zoom,
		DevicePixelRatio: vc.DevicePixelRatio,
	}.Normalized()
}

// layoutFile parses the HTML at path and lays it out with engine.
func layoutFile(engine *layout.Engine, path string, opts layoutOptions, vp units.Viewport) (*DocumentOutput, error) {
	doc, err := loadDocument(path)
	if err != nil {
		return nil, err
	}

	sheet := parser.ParseRules(doc.Stylesheet())
	if opts.cssFile != "" {
		extra, err := readFile(opts.cssFile)
		if err != nil {
			return nil, err
		}
		sheet = append(sheet, parser.ParseRules(string(extra))...)
	}

	res, err := engine.ComputeLayout(doc.Root, sheet, vp)
	if err != nil {
		return nil, fmt.Errorf("failed to lay out %s: %w", path, err)
	}

	ids, err := selectIDs(doc, res, opts.xpath)
	if err != nil {
		return nil, err
	}
	return buildOutput(path, doc, res, ids, vp), nil
}

func loadDocument(path string) (*dom.Document, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := dom.FromHTML(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

func readFile(path string) ([]byte, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand path %s: %w", path, err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// selectIDs returns the ids to report, in document order. With no XPath it
// reports every element that has a rectangle.
func selectIDs(doc *dom.Document, res *layout.Result, xpath string) ([]dom.NodeID, error) {
	if xpath != "" {
		return doc.QueryIDs(xpath)
	}
	ids := make([]dom.NodeID, 0, len(res.Rects))
	for id := range res.Rects {
		ids = append(ids, id)
	}
	// FromHTML numbers elements in document order.
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func buildOutput(source string, doc *dom.Document, res *layout.Result, ids []dom.NodeID, vp units.Viewport) *DocumentOutput {
	tags := make(map[dom.NodeID]string)
	dom.Walk(doc.Root, func(n dom.Node, _ int) bool {
		tags[n.ID()] = n.Tag()
		return true
	})

	out := &DocumentOutput{
		Source: source,
		Viewport: ViewportOutput{
			Width:            vp.Width,
			Height:           vp.Height,
			RootFontSize:     vp.RootFontSize,
			Zoom:             vp.Zoom,
			DevicePixelRatio: vp.DevicePixelRatio,
		},
		Document: res.DocumentSize,
		Metrics:  res.Metrics,
		Nodes:    make([]NodeOutput, 0, len(ids)),
	}
	for _, id := range ids {
		r, ok := res.Rects[id]
		if !ok {
			// Matched but not rendered, e.g. <head> or a display:none subtree.
			continue
		}
		out.Nodes = append(out.Nodes, NodeOutput{ID: id, Tag: tags[id], XPath: doc.XPath(id), Rect: r})
	}
	return out
}

// writeJSON encodes v to path, or to w when path is empty.
func writeJSON(w io.Writer, path string, v any, pretty bool) error {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = w.Write(data)
		return err
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("failed to expand path %s: %w", path, err)
	}
	if err := os.WriteFile(expanded, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
