package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/resale-cli/internal/model"
	"github.com/sells-group/resale-cli/internal/parser"
)

var (
	parseSite   string
	parsePrices bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file|-]",
	Short: "Parse a saved marketplace results page into listings",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		site, err := model.ParseSite(parseSite)
		if err != nil {
			return describeError(err)
		}

		payload, err := readInput(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}

		p := parser.New(map[model.Site]string{
			model.SiteLeboncoin:  cfg.Sites.Leboncoin.BaseURL,
			model.SiteLacentrale: cfg.Sites.Lacentrale.BaseURL,
		})

		if parsePrices {
			prices, err := p.ParsePrices(payload, site)
			if err != nil {
				return describeError(err)
			}
			return printJSON(cmd.OutOrStdout(), prices)
		}

		listings, err := p.Parse(payload, site)
		if err != nil {
			return describeError(err)
		}
		return printJSON(cmd.OutOrStdout(), listings)
	},
}

func init() {
	parseCmd.Flags().StringVar(&parseSite, "site", string(model.SiteLeboncoin), "marketplace the page comes from")
	parseCmd.Flags().BoolVar(&parsePrices, "prices", false, "print only the prices, highest first")
	rootCmd.AddCommand(parseCmd)
}
