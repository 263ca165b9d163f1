package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chess10kp/webdesk/internal/config"
)

func main() {
	cmd := &cobra.Command{
		Use:           "config-validator [path]",
		Short:         "Validate a webdesk config file",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			configPath := config.DefaultPath
			if len(args) > 0 {
				configPath = args[0]
			}

			fmt.Printf("Validating config: %s\n", configPath)
			if err := config.ValidateConfig(configPath); err != nil {
				return err
			}
			fmt.Println("✅ Config is valid!")
			return nil
		},
	}

	if err := cmd.Execute(); err != nil {
		fmt.Printf("❌ Config validation failed: %v\n", err)
		os.Exit(1)
	}
}
