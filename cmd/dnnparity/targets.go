package main

import (
	"fmt"
	"os"

	"github.com/example/go-dnn-parity/internal/config"
	"github.com/example/go-dnn-parity/internal/device"
	"github.com/example/go-dnn-parity/internal/model"
	"github.com/spf13/cobra"
)

func newTargetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "targets",
		Short: "Probe which execution targets the configured backend resolves",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			backend, err := config.NormalizeBackend(cfg.Run.Backend)
			if err != nil {
				return err
			}

			engines, err := buildEngines(cfg, backend)
			if err != nil {
				return err
			}

			resolver := device.NewResolver(engines.backend.Dispatcher())

			available := make(map[device.Target]bool)
			for _, t := range resolver.Available() {
				available[t] = true
			}

			fmt.Fprintf(os.Stdout, "backend: %s\n", backend)

			for _, t := range device.AllTargets() {
				mark := "-"
				if available[t] {
					mark = "+"
				}

				fmt.Fprintf(os.Stdout, "%s %-15s precision %s\n",
					mark, t, model.PrecisionForTarget(t))
			}

			return nil
		},
	}

	return cmd
}
