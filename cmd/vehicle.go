package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/resale-cli/internal/extract"
	"github.com/sells-group/resale-cli/internal/fetcher"
	"github.com/sells-group/resale-cli/internal/model"
)

// vehicleFlags describes the source vehicle on the command line. An auction
// page URL or a free-text title fills in whatever explicit flags leave unset.
type vehicleFlags struct {
	brand, model, trim string
	fuel, gearbox      string
	year, mileage      int
	price              float64
	title              string
	fromURL            string
}

func (f *vehicleFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.brand, "brand", "", "vehicle brand, e.g. RENAULT")
	fl.StringVar(&f.model, "model", "", "vehicle model, e.g. CLIO")
	fl.StringVar(&f.trim, "trim", "", "trim or full version label")
	fl.StringVar(&f.fuel, "fuel", "", "fuel type (diesel, essence, GO, ES, hybride, electrique, gpl)")
	fl.StringVar(&f.gearbox, "gearbox", "", "gearbox (manuelle, automatique)")
	fl.IntVar(&f.year, "year", 0, "registration year")
	fl.IntVar(&f.mileage, "mileage", 0, "mileage in km")
	fl.Float64Var(&f.price, "price", 0, "auction price in euros")
	fl.StringVar(&f.title, "title", "", "free-text vehicle title to extract attributes from")
	fl.StringVar(&f.fromURL, "from-url", "", "auction detail page to read the vehicle from")
}

func (f *vehicleFlags) vehicle(ctx context.Context, fetch fetcher.Fetcher) (model.SourceVehicle, error) {
	var v model.SourceVehicle

	switch {
	case f.fromURL != "":
		body, err := fetch.Fetch(ctx, f.fromURL)
		if err != nil {
			return v, eris.Wrap(err, "fetch auction page")
		}
		page, err := extract.ParseSourcePage(body, f.fromURL)
		if err != nil {
			return v, err
		}
		v = page.Vehicle
	case f.title != "":
		extracted, _, err := extract.Extract(f.title)
		if err != nil {
			return v, err
		}
		v = extracted
	}

	if f.brand != "" {
		v.Brand = f.brand
	}
	if f.model != "" {
		v.Model = f.model
	}
	if f.trim != "" {
		v.Trim = f.trim
	}
	if f.fuel != "" {
		v.FuelType = model.ParseFuelType(f.fuel)
	}
	if f.gearbox != "" {
		v.Transmission = model.ParseTransmission(f.gearbox)
	}
	if f.year != 0 {
		v.Year = f.year
	}
	if f.mileage != 0 {
		v.Mileage = f.mileage
	}
	if f.price != 0 {
		v.ListedPrice = f.price
	}
	return v, v.Validate()
}

// readInput reads a file argument, or stdin for "-" or no argument.
func readInput(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		return data, eris.Wrap(err, "read stdin")
	}
	data, err := os.ReadFile(args[0])
	return data, eris.Wrapf(err, "read %s", args[0])
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// describeError renders a pipeline error for the terminal.
func describeError(err error) error {
	kind := model.ErrorKind(err)
	if kind == "internal" {
		return err
	}
	return fmt.Errorf("%s (%s): %w", model.UserMessage(err), kind, err)
}

func euros(v float64) string {
	s := fmt.Sprintf("%.0f", v)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String() + " €"
	}
	return b.String() + " €"
}
