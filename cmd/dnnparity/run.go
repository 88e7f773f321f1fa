package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/example/go-dnn-parity/internal/config"
	"github.com/example/go-dnn-parity/internal/device"
	"github.com/example/go-dnn-parity/internal/engine"
	"github.com/example/go-dnn-parity/internal/graph"
	"github.com/example/go-dnn-parity/internal/harness"
	"github.com/example/go-dnn-parity/internal/model"
	"github.com/example/go-dnn-parity/internal/ort"
	"github.com/example/go-dnn-parity/internal/report"
	"github.com/example/go-dnn-parity/internal/sim"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the validation suite across models and targets",
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			targets, err := resolveTargets(cfg.Run.Targets, resolver)
			if err != nil {
				return err
			}

			models := cfg.Run.Models
			if len(models) == 0 {
				models = model.Names()
			}

			suite := &harness.Suite{
				Orchestrator: harness.NewOrchestrator(
					engines.backend,
					engines.graphs,
					resolver,
					device.NewExtensionLoader(),
					cfg.Run.Seed,
				),
				Models:  models,
				Targets: targets,
				Locate:  locateFunc(cfg, backend),
			}

			rep := suite.Run(cmd.Context())

			if jsonOut {
				report.FormatJSON(rep, os.Stdout)
			} else {
				fmt.Fprintf(os.Stdout, "backend: %s  seed: %d  targets: %s\n",
					backend, cfg.Run.Seed, targetList(targets))
				report.FormatTable(rep, os.Stdout)
			}

			if !rep.OK() {
				return errors.New("validation failed")
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the run report as JSON")

	return cmd
}

// enginePair holds the two independent views of one inference runtime: the
// vendor object pipeline and the unified graph API.
type enginePair struct {
	backend engine.Backend
	graphs  graph.Loader
}

func buildEngines(cfg config.Config, backend string) (enginePair, error) {
	switch backend {
	case config.BackendSim:
		eng := sim.New()
		return enginePair{backend: eng, graphs: eng}, nil
	case config.BackendORT:
		rt, err := ort.Bootstrap(ort.Config{
			LibraryPath: cfg.Runtime.ORTLibraryPath,
			APIVersion:  cfg.Runtime.ORTAPIVersion,
		})
		if err != nil {
			return enginePair{}, err
		}

		return enginePair{backend: ort.NewBackend(rt), graphs: ort.NewGraphEngine(rt)}, nil
	default:
		return enginePair{}, fmt.Errorf("unsupported backend %q", backend)
	}
}

// resolveTargets parses the configured target names, or probes the host for
// every target the backend resolves when none were configured.
func resolveTargets(names []string, resolver *device.Resolver) ([]device.Target, error) {
	if len(names) > 0 {
		return device.ParseTargets(names)
	}

	targets := resolver.Available()
	if len(targets) == 0 {
		return nil, errors.New("no execution targets available on this host")
	}

	return targets, nil
}

// locateFunc returns the model resolution strategy for the backend. The
// simulated engine derives everything from the model name, so its descriptors
// are nominal and need no files on disk; the ONNX Runtime backend requires the
// located pair to exist.
func locateFunc(cfg config.Config, backend string) harness.LocateFunc {
	locator := buildLocator(cfg, backend)

	if backend == config.BackendSim {
		return func(name string, precision model.Precision) (model.Descriptor, error) {
			return locator.Nominal(name, precision), nil
		}
	}

	return locator.Locate
}

func buildLocator(cfg config.Config, backend string) *model.Locator {
	topologyExt := cfg.Paths.TopologyExt
	weightsExt := cfg.Paths.WeightsExt

	// The ORT backend pairs a JSON manifest with .onnx weights. Explicit
	// extension overrides are respected; only the IR defaults are swapped.
	if backend == config.BackendORT && topologyExt == ".xml" && weightsExt == ".bin" {
		topologyExt, weightsExt = ".json", ".onnx"
	}

	return model.NewLocator(cfg.Paths.DataRoots, topologyExt, weightsExt)
}

func targetList(targets []device.Target) string {
	out := ""
	for i, t := range targets {
		if i > 0 {
			out += ","
		}

		out += t.String()
	}

	return out
}
