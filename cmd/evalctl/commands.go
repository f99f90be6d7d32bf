package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"vendoreval-backend/internal/bootstrap"
	"vendoreval-backend/internal/shared/config"
	"vendoreval-backend/internal/shared/telemetry"
	"vendoreval-backend/internal/submissions"
)

type pairFlags struct {
	EvaluationID string
	VendorID     string
}

func (f pairFlags) validate() error {
	if strings.TrimSpace(f.EvaluationID) == "" || strings.TrimSpace(f.VendorID) == "" {
		return errors.New("--evaluation and --vendor are required")
	}
	return nil
}

func addPairFlags(cmd *cobra.Command, f *pairFlags) {
	cmd.Flags().StringVar(&f.EvaluationID, "evaluation", "", "evaluation id")
	cmd.Flags().StringVar(&f.VendorID, "vendor", "", "vendor id")
}

// submissionsLoader builds the submissions service for a command run.
type submissionsLoader func(cmd *cobra.Command) (*submissions.Service, func(), error)

func loadFromConfig(cmd *cobra.Command) (*submissions.Service, func(), error) {
	cfg := config.Load()
	telemetry.SetLevel(cfg.LogLevel)
	app, err := bootstrap.BuildCLI(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, err
	}
	return app.SubmissionsService, func() { _ = app.DB.Close() }, nil
}

func newRootCommand() *cobra.Command {
	return newRootCommandWith(loadFromConfig)
}

func newRootCommandWith(load submissionsLoader) *cobra.Command {
	root := &cobra.Command{
		Use:           "evalctl",
		Short:         "Vendor evaluation maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newReconcileCommand(load))
	root.AddCommand(newProgressCommand(load))
	return root
}

func newReconcileCommand(load submissionsLoader) *cobra.Command {
	var flags pairFlags
	cmd := &cobra.Command{
		Use:     "reconcile",
		Short:   "Rebuild recommendations from every stored response of a vendor",
		Example: `  evalctl reconcile --evaluation 2f1c... --vendor acme`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := flags.validate(); err != nil {
				return err
			}
			svc, closeFn, err := load(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			result, err := svc.Reconcile(cmd.Context(), flags.EvaluationID, flags.VendorID)
			if err != nil {
				return fmt.Errorf("reconcile: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"counts": result.Counts(),
				"result": result,
			})
		},
	}
	addPairFlags(cmd, &flags)
	return cmd
}

func newProgressCommand(load submissionsLoader) *cobra.Command {
	var flags pairFlags
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Print completion and compliance for a vendor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := flags.validate(); err != nil {
				return err
			}
			svc, closeFn, err := load(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			progress, err := svc.Progress(cmd.Context(), flags.EvaluationID, flags.VendorID)
			if err != nil {
				return fmt.Errorf("progress: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), progress)
		},
	}
	addPairFlags(cmd, &flags)
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
