package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	rgeojson "github.com/samirrijal/railmap/internal/adapters/geojson"
	"github.com/samirrijal/railmap/internal/core/domain"
	"github.com/samirrijal/railmap/internal/core/usecases"
)

func outlineCmd(opts *globalOptions) *cobra.Command {
	var origin string
	var out string
	var format string
	var onBoard bool

	c := &cobra.Command{
		Use:   "outline FEATURES.geojson",
		Short: "Merge coastline or boundary lines into planar outline paths",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			var at *domain.GeoPoint
			if origin != "" {
				p, err := parseLatLon(origin)
				if err != nil {
					return err
				}
				at = &p
			}
			src, err := rgeojson.ReadFile(args[0])
			if err != nil {
				return err
			}

			outline, err := usecases.NewOutlineService(cfg.Geometry.Tolerances()).Compute(cmd.Context(), src, at)
			if err != nil {
				return err
			}
			if onBoard {
				cfg.Board.Transform().Outline(outline)
			}

			w, err := output(cmd, out)
			if err != nil {
				return err
			}
			defer w.Close()

			if format == "geojson" {
				data, err := rgeojson.OutlineFeatureCollection(outline).MarshalJSON()
				if err != nil {
					return fmt.Errorf("encode geojson: %w", err)
				}
				return writeRaw(w, data)
			}
			return writeJSON(w, outline)
		},
	}

	c.Flags().StringVar(&origin, "origin", "", "Projection origin as LAT,LON (default: centre of the lines)")
	c.Flags().StringVarP(&out, "output", "o", "", "Output file (default stdout)")
	c.Flags().StringVar(&format, "format", "json", "Output format: json|geojson")
	c.Flags().BoolVar(&onBoard, "board", false, "Also render the paths in board millimetres")
	return c
}

func parseLatLon(s string) (domain.GeoPoint, error) {
	latS, lonS, ok := strings.Cut(s, ",")
	if !ok {
		return domain.GeoPoint{}, fmt.Errorf("invalid origin %q: want LAT,LON", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latS), 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("invalid origin latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonS), 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("invalid origin longitude: %w", err)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return domain.GeoPoint{}, fmt.Errorf("origin %q out of range", s)
	}
	return domain.GeoPoint{Lat: lat, Lon: lon}, nil
}
