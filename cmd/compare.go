package main

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/resale-cli/internal/model"
)

var (
	compareVehicle vehicleFlags
	compareSite    string
	compareJSON    bool
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Price a vehicle against one marketplace",
	Example: `  resale-cli compare --brand RENAULT --model CLIO --fuel diesel --year 2020 --mileage 30000 --price 10000
  resale-cli compare --from-url https://www.alcopa-auction.fr/voiture-occasion/... --site lacentrale`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		site, err := model.ParseSite(compareSite)
		if err != nil {
			return describeError(err)
		}

		env, err := initEnv(ctx, "compare")
		if err != nil {
			return err
		}
		defer env.Close()

		v, err := compareVehicle.vehicle(ctx, env.Fetcher)
		if err != nil {
			return describeError(err)
		}

		res, err := env.Pipeline.Compare(ctx, v, site)
		if err != nil {
			return describeError(err)
		}

		if compareJSON {
			return printJSON(cmd.OutOrStdout(), res)
		}
		printValuation(cmd.OutOrStdout(), v, res)
		return nil
	},
}

func printValuation(w io.Writer, v model.SourceVehicle, res *model.ValuationResult) {
	fmt.Fprintf(w, "%s %s on %s\n", v.Brand, v.Model, res.Site)
	fmt.Fprintf(w, "  matches:       %d (%d outliers removed)\n", res.TotalMatches, res.OutliersRemoved)
	fmt.Fprintf(w, "  market price:  %s (median %s, %s - %s)\n", euros(res.AvgMarketPrice), euros(res.MedianPrice), euros(res.MinPrice), euros(res.MaxPrice))
	fmt.Fprintf(w, "  margin:        %s (%.1f%%) %s\n", euros(res.Margin), res.MarginPct, res.Recommendation.Label())
	if res.Fees != nil {
		fmt.Fprintf(w, "  buyer cost:    %s, net margin %s\n", euros(res.Fees.Total), euros(res.NetMargin))
	}
	for _, m := range res.Matches {
		fmt.Fprintf(w, "  #%d %3d pts  %10s  %s\n", m.Rank, m.Score, euros(m.Price), m.Title)
	}
}

func init() {
	compareVehicle.bind(compareCmd)
	compareCmd.Flags().StringVar(&compareSite, "site", string(model.SiteLeboncoin), "marketplace: leboncoin or lacentrale")
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "print the full result as JSON")
	rootCmd.AddCommand(compareCmd)
}
