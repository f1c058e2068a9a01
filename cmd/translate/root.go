package main

import (
	"github.com/spf13/cobra"

	"github.com/neicedai/translate/version"
)

var (
	cfgFile string
	homeDir string
)

var rootCmd = &cobra.Command{
	Use:   "translate",
	Short: "Annotated reading pages for classical Chinese texts",
	Long: `Translate generates static interactive reading pages for classical
Chinese texts, with per-character pinyin and glosses obtained from an LLM
annotation provider.

The pipeline includes:
  - Source splitting into original text, vernacular translation, and commentary
  - LLM annotation with per-character positions and phrase ranges
  - Defensive normalization of provider responses against the original text
  - Static page and navigation index generation`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.translate/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "translate home directory (default: ~/.translate)",
	)

	rootCmd.AddCommand(versionCmd)
}
