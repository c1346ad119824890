package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/resale-cli/internal/extract"
)

var (
	extractCards   bool
	extractText    string
	extractPageURL string
)

var extractCmd = &cobra.Command{
	Use:   "extract [file|-]",
	Short: "Read source vehicles from an auction page or a title",
	Long:  "Parses a saved auction detail page (or list page with --cards) and prints the vehicle it describes. With --text, extracts attributes from a free-text title instead.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()

		if strings.TrimSpace(extractText) != "" {
			v, attrs, err := extract.Extract(extractText)
			if err != nil {
				return describeError(err)
			}
			return printJSON(w, map[string]any{"vehicle": v, "attributes": attrs})
		}

		html, err := readInput(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}

		if extractCards {
			pages, err := extract.ParseSourceCards(html, extractPageURL)
			if err != nil {
				return err
			}
			return printJSON(w, pages)
		}

		page, err := extract.ParseSourcePage(html, extractPageURL)
		if err != nil {
			return describeError(err)
		}
		return printJSON(w, page)
	},
}

func init() {
	extractCmd.Flags().BoolVar(&extractCards, "cards", false, "parse a list page of vehicle cards")
	extractCmd.Flags().StringVar(&extractText, "text", "", "extract from a free-text title instead of HTML")
	extractCmd.Flags().StringVar(&extractPageURL, "url", "", "page URL, used to absolutize links")
	rootCmd.AddCommand(extractCmd)
}
