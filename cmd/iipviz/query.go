package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"iipviz/internal/app"
	"iipviz/internal/model"
	"iipviz/internal/service"
)

func newQueryCmd(root *rootOptions) *cobra.Command {
	var (
		out        string
		jsonOutput bool
		strict     bool
	)

	cmd := &cobra.Command{
		Use:   "query <question>",
		Short: "Render a chart for a question",
		Example: `  iipviz query "Vẽ biểu đồ giá thuê đất các KCN ở Bắc Ninh" --out bac-ninh.png
  iipviz query "so sánh diện tích VSIP I và VSIP II" --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ui := NewUI(cmd.OutOrStdout(), cmd.ErrOrStderr(), jsonOutput, root.noColor)

			a, err := newApp(ctx, root)
			if err != nil {
				return ui.Fail(err)
			}
			defer a.Close()

			req := &model.VisualizeRequest{Query: strings.Join(args, " "), StrictIntent: strict}
			payload, err := a.Service.Visualize(ctx, req)
			if err != nil {
				errPayload, known := service.ToErrorPayload(err)
				if jsonOutput {
					_ = writeJSON(cmd.OutOrStdout(), errPayload)
				}
				if known {
					ui.Error("%s", errPayload.Message)
					return err
				}
				return ui.Fail(err)
			}

			if out != "" {
				if err := saveChart(out, payload.Chart); err != nil {
					return ui.Fail(err)
				}
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), payload)
			}
			ui.Payload(payload)
			if out != "" {
				ui.Success("Chart saved to %s", out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "chart.png", "PNG file to write the chart to (empty to skip)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the payload as JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "reject questions that do not ask for a chart")
	return cmd
}

func newProvincesCmd(root *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "provinces",
		Short: "List the provinces in the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ui := NewUI(cmd.OutOrStdout(), cmd.ErrOrStderr(), jsonOutput, root.noColor)

			a, err := newApp(cmd.Context(), root)
			if err != nil {
				return ui.Fail(err)
			}
			defer a.Close()

			resp := a.Service.Provinces()
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			ui.Provinces(resp)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the list as JSON")
	return cmd
}

// newApp keeps pipeline logs off the terminal unless asked for
func newApp(ctx context.Context, root *rootOptions) (*app.App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var logOut io.Writer = io.Discard
	if root.verbose {
		logOut = os.Stderr
	}
	return app.New(ctx, "iipviz-cli", logOut)
}

func saveChart(path, encoded string) error {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("failed to decode chart: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
