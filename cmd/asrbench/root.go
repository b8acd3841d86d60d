package main

import (
	"github.com/spf13/cobra"

	"asr-benchmark-platform/internal/config"
)

func newRootCommand() *cobra.Command {
	var registryFlag string

	rootCmd := &cobra.Command{
		Use:           "asrbench",
		Short:         "Benchmark ASR models against reference transcripts",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&registryFlag, "registry", "r", "", "Model registry TOML file (built-in default registry when omitted)")

	rootCmd.AddCommand(newRunCommand(&registryFlag))
	rootCmd.AddCommand(newModelsCommand(&registryFlag))

	return rootCmd
}

// loadRegistry reads the registry flag, falling back to the built-in set.
func loadRegistry(path string) (*config.RegistryConfig, error) {
	if path == "" {
		return config.DefaultRegistry(), nil
	}
	return config.LoadRegistry(path)
}
