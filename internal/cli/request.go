package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samirrijal/railmap/internal/core/domain"
	"github.com/samirrijal/railmap/internal/core/usecases"
	"github.com/samirrijal/railmap/internal/pkg/config"
)

// requestFlags build a LayoutRequest from a JSON file, flags, or both;
// flags win.
type requestFlags struct {
	file      string
	name      string
	routes    []string
	spacing   float64
	refPrefix string
	refStart  int
}

func (f *requestFlags) register(c *cobra.Command) {
	c.Flags().StringVarP(&f.file, "request", "r", "", "LayoutRequest JSON file")
	c.Flags().StringVarP(&f.name, "name", "n", "", "Layout name")
	c.Flags().StringArrayVar(&f.routes, "route", nil, "Route as REF or REF@TOWARDS (repeatable)")
	c.Flags().Float64Var(&f.spacing, "spacing", 0, "Marker spacing in metres (default from config)")
	c.Flags().StringVar(&f.refPrefix, "ref-prefix", "", "Marker reference prefix (default from config)")
	c.Flags().IntVar(&f.refStart, "ref-start", 0, "First marker reference number (default from config)")
}

func (f *requestFlags) request(c *cobra.Command) (domain.LayoutRequest, error) {
	var req domain.LayoutRequest
	if f.file != "" {
		data, err := os.ReadFile(f.file)
		if err != nil {
			return req, fmt.Errorf("read request: %w", err)
		}
		if err := json.Unmarshal(data, &req); err != nil {
			return req, fmt.Errorf("decode request %s: %w", f.file, err)
		}
	}
	if f.name != "" {
		req.Name = f.name
	}
	if len(f.routes) > 0 {
		req.Routes = req.Routes[:0]
		for _, r := range f.routes {
			spec, err := parseRoute(r)
			if err != nil {
				return req, err
			}
			req.Routes = append(req.Routes, spec)
		}
	}
	if c.Flags().Changed("spacing") {
		req.MarkerSpacing = f.spacing
	}
	if c.Flags().Changed("ref-prefix") {
		req.MarkerRefPrefix = f.refPrefix
	}
	if c.Flags().Changed("ref-start") {
		start := f.refStart
		req.MarkerRefStart = &start
	}
	if len(req.Routes) == 0 {
		return req, fmt.Errorf("no routes: pass --route or a --request file")
	}
	return req, nil
}

// parseRoute reads "L2" or "L2@Circular Quay".
func parseRoute(s string) (domain.RouteSpec, error) {
	ref, towards, _ := strings.Cut(s, "@")
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return domain.RouteSpec{}, fmt.Errorf("invalid route %q: empty ref", s)
	}
	return domain.RouteSpec{Ref: ref, Towards: strings.TrimSpace(towards)}, nil
}

// layoutService builds layouts without persisting them.
func layoutService(cfg *config.Config) *usecases.LayoutService {
	return usecases.NewLayoutService(nil, nil, nil, usecases.LayoutOptions{
		Tolerances:      cfg.Geometry.Tolerances(),
		MarkerSpacing:   cfg.Layout.MarkerSpacing,
		MarkerRefPrefix: cfg.Layout.MarkerRefPrefix,
		MarkerRefStart:  cfg.Layout.MarkerRefStart,
		Board:           cfg.Board.Transform(),
	})
}

// output opens path for writing; "" and "-" mean the command's stdout.
func output(c *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{c.OutOrStdout()}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeRaw(w io.Writer, data []byte) error {
	_, err := w.Write(append(data, '\n'))
	return err
}

func checkFormat(format string) error {
	switch format {
	case "json", "geojson":
		return nil
	default:
		return fmt.Errorf("unknown format %q: want json or geojson", format)
	}
}
