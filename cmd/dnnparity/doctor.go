package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/example/go-dnn-parity/internal/config"
	"github.com/example/go-dnn-parity/internal/device"
	"github.com/example/go-dnn-parity/internal/doctor"
	"github.com/example/go-dnn-parity/internal/model"
	"github.com/example/go-dnn-parity/internal/ort"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run local runtime and model data checks",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			backend, err := config.NormalizeBackend(cfg.Run.Backend)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(os.Stdout, "backend: %s\n", backend)

			locator := buildLocator(cfg, backend)

			dcfg := doctor.Config{
				ORTVersion: func() (string, error) {
					info, err := ort.DetectRuntime(cfg.Runtime.ORTLibraryPath)
					if err != nil {
						return "", err
					}

					return fmt.Sprintf("%s (%s)", info.LibraryPath, info.Version), nil
				},
				SkipORT:     backend == config.BackendSim,
				CPUFeatures: device.CPUFeatureSummary,
			}

			// The simulated backend derives everything from model names, so
			// disk checks only apply to the ONNX Runtime backend.
			if backend == config.BackendORT {
				dcfg.DataRoots = locator.Roots()

				dcfg.Models = cfg.Run.Models
				if len(dcfg.Models) == 0 {
					dcfg.Models = model.Names()
				}

				dcfg.LocateModel = func(name string) error {
					_, err := locator.Locate(name, model.PrecisionFP32)
					return err
				}
			}

			result := doctor.Run(dcfg, os.Stdout)

			if result.Failed() {
				for _, f := range result.Failures() {
					fmt.Fprintf(os.Stderr, "FAIL: %s\n", f)
				}

				return errors.New("doctor checks failed")
			}

			_, _ = fmt.Fprintln(os.Stdout, "doctor checks passed")

			return nil
		},
	}

	return cmd
}
