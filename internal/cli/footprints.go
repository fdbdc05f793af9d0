package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

func footprintsCmd(opts *globalOptions) *cobra.Command {
	var req requestFlags
	var out string

	c := &cobra.Command{
		Use:   "footprints FEATURES.geojson",
		Short: "Compute board footprint placements (ref, x, y, rotation) for a layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := buildLayout(cmd, opts, &req, args[0])
			if err != nil {
				return err
			}
			if len(layout.Footprints) == 0 {
				return errors.New("no footprints: board scale is not positive")
			}

			w, err := output(cmd, out)
			if err != nil {
				return err
			}
			defer w.Close()
			return writeJSON(w, layout.Footprints)
		},
	}

	req.register(c)
	c.Flags().StringVarP(&out, "output", "o", "", "Output file (default stdout)")
	return c
}
