package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	configPrint bool
	configMode  string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Validate the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(configMode); err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if !configPrint {
			fmt.Fprintf(w, "config ok for %s\n", configMode)
			return nil
		}
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return eris.Wrap(err, "marshal config")
		}
		_, err = w.Write(out)
		return err
	},
}

func init() {
	configCmd.Flags().BoolVar(&configPrint, "print", false, "print the merged config as YAML")
	configCmd.Flags().StringVar(&configMode, "mode", "compare", "command to validate for: compare, margin, serve or purge")
	rootCmd.AddCommand(configCmd)
}
