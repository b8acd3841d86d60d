package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"asr-benchmark-platform/internal/config"
	"asr-benchmark-platform/internal/coreengine/resolver"
)

func newModelsCommand(registryFlag *string) *cobra.Command {
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List registered models with availability and fallback chains",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry(*registryFlag)
			if err != nil {
				return err
			}
			adapters, err := config.BuildAdapters(reg)
			if err != nil {
				return err
			}
			res, err := resolver.New(adapters)
			if err != nil {
				return err
			}

			type modelStatus struct {
				Name              string   `json:"name"`
				Backend           string   `json:"backend"`
				Available         bool     `json:"available"`
				UnavailableReason string   `json:"unavailable_reason,omitempty"`
				Chain             []string `json:"chain"`
			}

			statuses := []modelStatus{}
			for _, desc := range res.Descriptors() {
				adapter, ok := res.Adapter(desc.Name)
				if !ok {
					continue
				}
				available, reason := adapter.IsAvailable()
				statuses = append(statuses, modelStatus{
					Name:              desc.Name,
					Backend:           string(desc.BackendKind),
					Available:         available,
					UnavailableReason: reason,
					Chain:             res.Chain(desc.Name),
				})
			}

			if jsonFlag {
				return writeJSON(cmd, statuses)
			}

			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				availability := "yes"
				if !status.Available {
					availability = fmt.Sprintf("no (%s)", status.UnavailableReason)
				}
				rows = append(rows, []string{
					status.Name,
					status.Backend,
					availability,
					strings.Join(status.Chain, " -> "),
				})
			}
			cmd.Println(renderTable([]string{"Model", "Backend", "Available", "Fallback Chain"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Print model statuses as JSON")
	return cmd
}
