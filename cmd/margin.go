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
	marginVehicle vehicleFlags
	marginJSON    bool
)

var marginCmd = &cobra.Command{
	Use:   "margin",
	Short: "Estimate the resale margin from a narrow and a broad search",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "margin")
		if err != nil {
			return err
		}
		defer env.Close()

		v, err := marginVehicle.vehicle(ctx, env.Fetcher)
		if err != nil {
			return describeError(err)
		}

		res, err := env.Pipeline.Margin(ctx, v)
		if err != nil {
			return describeError(err)
		}

		if marginJSON {
			return printJSON(cmd.OutOrStdout(), res)
		}
		printMargin(cmd.OutOrStdout(), v, res)
		return nil
	},
}

func printMargin(w io.Writer, v model.SourceVehicle, res *model.MarginResult) {
	fmt.Fprintf(w, "%s %s\n", v.Brand, v.Model)
	fmt.Fprintf(w, "  ads:           %d (%d narrow, %d broad)\n", res.TotalAds, len(res.NarrowPrices), len(res.BroadPrices))
	fmt.Fprintf(w, "  market price:  %s (%s - %s)\n", euros(res.AvgMarketPrice), euros(res.MinPrice), euros(res.MaxPrice))
	fmt.Fprintf(w, "  margin:        %s\n", euros(res.Margin))
	if res.Fees != nil {
		fmt.Fprintf(w, "  buyer cost:    %s, net margin %s\n", euros(res.Fees.Total), euros(res.NetMargin))
	}
	for _, p := range res.SelectedPrices {
		fmt.Fprintf(w, "  - %s\n", euros(p))
	}
}

func init() {
	marginVehicle.bind(marginCmd)
	marginCmd.Flags().BoolVar(&marginJSON, "json", false, "print the full result as JSON")
	rootCmd.AddCommand(marginCmd)
}
