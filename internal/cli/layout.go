package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	rgeojson "github.com/samirrijal/railmap/internal/adapters/geojson"
	"github.com/samirrijal/railmap/internal/core/domain"
)

func layoutCmd(opts *globalOptions) *cobra.Command {
	var req requestFlags
	var out string
	var format string

	c := &cobra.Command{
		Use:   "layout FEATURES.geojson",
		Short: "Compute markers, stations and footprints for routes in a GeoJSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			layout, err := buildLayout(cmd, opts, &req, args[0])
			if err != nil {
				return err
			}

			w, err := output(cmd, out)
			if err != nil {
				return err
			}
			defer w.Close()

			if format == "geojson" {
				data, err := rgeojson.LayoutFeatureCollection(layout).MarshalJSON()
				if err != nil {
					return fmt.Errorf("encode geojson: %w", err)
				}
				return writeRaw(w, data)
			}
			return writeJSON(w, layout)
		},
	}

	req.register(c)
	c.Flags().StringVarP(&out, "output", "o", "", "Output file (default stdout)")
	c.Flags().StringVar(&format, "format", "json", "Output format: json|geojson")
	return c
}

func buildLayout(cmd *cobra.Command, opts *globalOptions, flags *requestFlags, path string) (*domain.Layout, error) {
	cfg, err := opts.config()
	if err != nil {
		return nil, err
	}
	request, err := flags.request(cmd)
	if err != nil {
		return nil, err
	}
	src, err := rgeojson.ReadFile(path)
	if err != nil {
		return nil, err
	}
	slog.Debug("features loaded", "path", path, "features", src.Len())

	layout, err := layoutService(cfg).Build(cmd.Context(), src, request)
	if err != nil {
		return nil, err
	}
	slog.Info("layout computed", "markers", len(layout.Markers), "stations", len(layout.Stations))
	return layout, nil
}
