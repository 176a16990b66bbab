package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/intertest/internal/llm"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Show the provider priority list and which have credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return fmt.Errorf("load provider config: %w", err)
		}

		providers, err := llm.NewProviders(cfg, nil, nil)
		if err != nil {
			return fmt.Errorf("build providers: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(providers) == 0 {
			fmt.Fprintln(out, "No providers in the priority list.")
			return nil
		}

		fmt.Fprintf(out, "%-3s  %-12s  %-28s  %-18s  %s\n", "#", "Provider", "Model", "Credential", "Ready")
		fmt.Fprintln(out, strings.Repeat("─", 72))

		ready := 0
		for i, p := range providers {
			ok := "✗"
			model := "-"
			if llm.IsConfigured(p) {
				ok = "✓"
				model = truncate(p.ModelID(), 28)
				ready++
			}
			fmt.Fprintf(out, "%-3d  %-12s  %-28s  %-18s  %s\n",
				i+1, p.Name(), model, llm.CredentialEnv(p.Name()), ok)
		}

		if ready == 0 {
			fmt.Fprintln(out)
			fmt.Fprintln(out, llm.NoProvidersMessage(cfg.Providers...))
		}
		return nil
	},
}
