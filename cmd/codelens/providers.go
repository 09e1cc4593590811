package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codelens-ai/codelens/llm"
)

func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List LLM providers and their status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := setup(cmd)
			if err != nil {
				return err
			}
			registry := llm.NewRegistry(cfg.ProviderConfig(), cfg.Providers)

			fmt.Printf("%-12s %-12s %s\n", "PROVIDER", "STATUS", "DEFAULT MODEL")
			for _, provider := range llm.AllProviders {
				status := "disabled"
				model := ""
				if registry.IsProviderEnabled(provider) {
					status = "unconfigured"
					if registry.IsProviderConfigured(provider) {
						status = "ready"
						if key, err := registry.Resolve(provider, ""); err == nil {
							model = key.Model
						}
					}
				}
				fmt.Printf("%-12s %-12s %s\n", provider, status, model)
			}
			return nil
		},
	}
}
