package main

import (
	"fmt"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/resale-cli/internal/valuation"
)

var feesJSON bool

var feesCmd = &cobra.Command{
	Use:   "fees <price>",
	Short: "Show the auction buyer fees for a hammer price",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		price, err := strconv.ParseFloat(args[0], 64)
		if err != nil || price < 0 {
			return eris.Errorf("invalid price %q", args[0])
		}

		fees, err := valuation.FeesFromConfig(cfg.Valuation.Fees).Calculate(price)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if feesJSON {
			return printJSON(w, fees)
		}
		basis := "percentage"
		if fees.FloorApplied {
			basis = "floor"
		}
		fmt.Fprintf(w, "price:       %s\n", euros(fees.Price))
		fmt.Fprintf(w, "commission:  %s (%s)\n", euros(fees.Commission), basis)
		fmt.Fprintf(w, "fixed fee:   %s\n", euros(fees.FixedFee))
		fmt.Fprintf(w, "platform:    %s\n", euros(fees.PlatformFee))
		fmt.Fprintf(w, "total:       %s\n", euros(fees.Total))
		return nil
	},
}

func init() {
	feesCmd.Flags().BoolVar(&feesJSON, "json", false, "print the breakdown as JSON")
	rootCmd.AddCommand(feesCmd)
}
