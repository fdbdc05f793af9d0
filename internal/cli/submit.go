package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/railmap/internal/workflows"
)

func submitCmd(opts *globalOptions) *cobra.Command {
	var req requestFlags
	var wait bool

	c := &cobra.Command{
		Use:   "submit FEATURES.geojson",
		Short: "Start a layout workflow on the worker's task queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			request, err := req.request(cmd)
			if err != nil {
				return err
			}
			features, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read features: %w", err)
			}

			tc, err := client.Dial(client.Options{
				HostPort:  cfg.Temporal.HostPort,
				Namespace: cfg.Temporal.Namespace,
				Logger:    slog.Default(),
			})
			if err != nil {
				return fmt.Errorf("temporal client: %w", err)
			}
			defer tc.Close()

			run, err := tc.ExecuteWorkflow(cmd.Context(), client.StartWorkflowOptions{
				ID:        "layout-" + uuid.NewString(),
				TaskQueue: cfg.Temporal.TaskQueue,
			}, workflows.LayoutWorkflow, workflows.LayoutWorkflowInput{Request: request, Features: features})
			if err != nil {
				return fmt.Errorf("start workflow: %w", err)
			}
			if !wait {
				fmt.Fprintf(cmd.OutOrStdout(), "workflow %s run %s\n", run.GetID(), run.GetRunID())
				return nil
			}

			var layoutID string
			if err := run.Get(cmd.Context(), &layoutID); err != nil {
				return fmt.Errorf("workflow %s: %w", run.GetID(), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), layoutID)
			return nil
		},
	}

	req.register(c)
	c.Flags().BoolVar(&wait, "wait", false, "Wait for the workflow and print the stored layout ID")
	return c
}
