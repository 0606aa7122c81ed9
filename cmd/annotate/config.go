package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func runConfig(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd, args)
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(a.cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	w := cmd.OutOrStdout()
	if a.cfg.ConfigFileUsed != "" {
		fmt.Fprintf(w, "# loaded from %s\n", a.cfg.ConfigFileUsed)
	}
	_, err = w.Write(out)
	return err
}
