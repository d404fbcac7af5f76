package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"adapterd/internal/config"
	"adapterd/internal/ffi"
	"adapterd/internal/generation"
)

func newGenerateCmd(opts *options) *cobra.Command {
	var (
		prompt      string
		brand       string
		adapterID   string
		checkpoint  string
		maxTokens   int
		temperature float64
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run one generation and print the result",
		Example: "  BRAND=documentation adapterd generate --prompt 'Explain quicksort'\n" +
			"  adapterd generate --adapter-id test_gen_adapter --checkpoint ./adapters/test_gen --prompt 'def add(a, b):'",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			if cfg, err = config.Validate(cfg); err != nil {
				return err
			}
			log := newLogger(cfg.LogLevel, true)
			svc, err := config.NewService(cfg, log, nil)
			if err != nil {
				return err
			}
			defer svc.Close()

			var req generation.Request
			if adapterID != "" {
				req = generation.ByCheckpoint(prompt, adapterID, checkpoint)
			} else {
				if brand == "" {
					brand = cfg.DefaultBrand
				}
				req = generation.ByBrand(prompt, brand).WithCheckpoint(checkpoint)
			}
			req = req.WithParams(generation.SamplingParams{MaxTokens: maxTokens, Temperature: float32(temperature)})

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			res := svc.Generate(ctx, req)
			if res.Err != nil {
				return errors.New(ffi.Text(res))
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Text)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&prompt, "prompt", "", "Prompt text")
	f.StringVar(&brand, "brand", "", "Brand (strategy) name; defaults to BRAND")
	f.StringVar(&adapterID, "adapter-id", "", "Supported adapter id for checkpoint addressing")
	f.StringVar(&checkpoint, "checkpoint", "", "Adapter checkpoint path")
	f.IntVar(&maxTokens, "max-tokens", 0, "Maximum new tokens (0=mode default)")
	f.Float64Var(&temperature, "temperature", 0, "Sampling temperature (0=mode default)")
	_ = cmd.MarkFlagRequired("prompt")
	cmd.MarkFlagsMutuallyExclusive("brand", "adapter-id")
	return cmd
}
