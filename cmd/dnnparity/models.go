package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/example/go-dnn-parity/internal/config"
	"github.com/example/go-dnn-parity/internal/model"
	"github.com/spf13/cobra"
)

func newModelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Model acquisition and verification commands",
	}

	cmd.AddCommand(newModelsListCmd())
	cmd.AddCommand(newModelsFetchCmd())
	cmd.AddCommand(newModelsVerifyCmd())
	return cmd
}

func newModelsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registry models and their on-disk availability",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			backend, err := config.NormalizeBackend(cfg.Run.Backend)
			if err != nil {
				return err
			}

			locator := buildLocator(cfg, backend)

			for _, name := range model.Names() {
				marks := ""
				for _, precision := range []model.Precision{model.PrecisionFP32, model.PrecisionFP16} {
					state := "missing"
					if _, err := locator.Locate(name, precision); err == nil {
						state = "present"
					}

					if marks != "" {
						marks += "  "
					}

					marks += fmt.Sprintf("%s:%s", precision, state)
				}

				fmt.Fprintf(os.Stdout, "%-42s %s\n", name, marks)
			}

			return nil
		},
	}

	return cmd
}

func newModelsFetchCmd() *cobra.Command {
	var baseURL string
	var outDir string
	var precisions []string

	cmd := &cobra.Command{
		Use:   "fetch [model...]",
		Short: "Download model file pairs from the model zoo",
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			names := args
			if len(names) == 0 {
				names = model.Names()
			}

			for _, name := range names {
				if !model.Known(name) {
					return fmt.Errorf("unknown model %q", name)
				}
			}

			out := outDir
			if out == "" {
				out = cfg.Paths.DataRoots[0]
			}

			precs, err := parsePrecisions(precisions)
			if err != nil {
				return err
			}

			for _, name := range names {
				for _, precision := range precs {
					err := model.Fetch(model.FetchOptions{
						Name:      name,
						Precision: precision,
						BaseURL:   baseURL,
						OutDir:    out,
						Stdout:    os.Stdout,
					})
					if err != nil {
						return fmt.Errorf("fetch %s/%s: %w", name, precision, err)
					}
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "", "Model zoo base URL override")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory model files land under (default: first data root)")
	cmd.Flags().StringSliceVar(&precisions, "precision", []string{"FP32", "FP16"}, "Precisions to fetch")

	return cmd
}

func newModelsVerifyCmd() *cobra.Command {
	var precisions []string

	cmd := &cobra.Command{
		Use:   "verify [model...]",
		Short: "Check local model pairs against the fetch lock manifest",
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			backend, err := config.NormalizeBackend(cfg.Run.Backend)
			if err != nil {
				return err
			}

			precs, err := parsePrecisions(precisions)
			if err != nil {
				return err
			}

			return model.Verify(model.VerifyOptions{
				Names:      args,
				Precisions: precs,
				Locator:    buildLocator(cfg, backend),
				LockDir:    cfg.Paths.DataRoots[0],
				Stdout:     os.Stdout,
				Stderr:     os.Stderr,
			})
		},
	}

	cmd.Flags().StringSliceVar(&precisions, "precision", nil, "Precisions to verify (default: FP32,FP16)")

	return cmd
}

func parsePrecisions(names []string) ([]model.Precision, error) {
	out := make([]model.Precision, 0, len(names))
	for _, name := range names {
		switch p := model.Precision(strings.ToUpper(strings.TrimSpace(name))); p {
		case model.PrecisionFP32, model.PrecisionFP16:
			out = append(out, p)
		default:
			return nil, fmt.Errorf("unknown precision %q (want FP32|FP16)", name)
		}
	}

	return out, nil
}
