package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/neicedai/translate/internal/config"
	"github.com/neicedai/translate/internal/home"
	"github.com/neicedai/translate/internal/pipeline"
	"github.com/neicedai/translate/internal/providers"
)

var (
	generateManifest string
	generateOnly     []string
	generateSkip     bool
	generateOut      string
	generateProvider string
	generateWatch    bool
	generateVerbose  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate annotation pages for manifest entries",
	Long: `Generate reads the manifest, annotates each listed work through the
configured LLM provider, and writes one static page per work plus a
navigation index.

Examples:
  translate generate                          # Annotate everything in the manifest
  translate generate --only 关雎,xueer.txt     # Only selected works
  translate generate --skip-annotation        # No provider calls, blank glosses
  translate generate --watch                  # Regenerate on source changes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		level := slog.LevelInfo
		if generateVerbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		}))

		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		cm, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfg := cm.Get()

		registry := providers.NewFromConfig(cfg.ToProviderRegistryConfig(), logger)

		p, err := pipeline.New(h, cfg, registry, logger)
		if err != nil {
			return err
		}

		opts := pipeline.Options{
			Manifest:       generateManifest,
			Only:           generateOnly,
			SkipAnnotation: generateSkip,
			OutputDir:      generateOut,
			Provider:       generateProvider,
		}

		if generateWatch {
			cm.OnChange(func(cfg *config.Config) {
				logger.Info("config reloaded", "provider", cfg.Defaults.Provider)
			})
			cm.WatchConfig()
			return p.RunWatch(ctx, opts)
		}
		return p.Run(ctx, opts)
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateManifest, "manifest", "", "manifest file (default: <home>/manifest.yaml)")
	generateCmd.Flags().StringSliceVar(&generateOnly, "only", nil, "only process entries matching these file names or titles")
	generateCmd.Flags().BoolVar(&generateSkip, "skip-annotation", false, "skip the provider and emit blank annotations")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "output directory (default: <home>/site)")
	generateCmd.Flags().StringVar(&generateProvider, "provider", "", "provider name (default: from config)")
	generateCmd.Flags().BoolVar(&generateWatch, "watch", false, "regenerate when manifest or sources change")
	generateCmd.Flags().BoolVarP(&generateVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(generateCmd)
}
