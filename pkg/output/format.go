package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/iwvelando/risk-ladder/pkg/constants"
	"github.com/iwvelando/risk-ladder/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// Write renders r to w in the named output format.
func Write(w io.Writer, outputFormat string, r Report) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		return PrettyFormat(w, r)
	case constants.OutputFormatCSV:
		return CsvFormat(w, r)
	case constants.OutputFormatJSON:
		return JSONFormat(w, r)
	case constants.OutputFormatYAML:
		return YAMLFormat(w, r)
	default:
		return fmt.Errorf("unsupported output format %q", outputFormat)
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, r Report) error {
	p := message.NewPrinter(language.English)

	if _, err := fmt.Fprintf(w, "--- %s ladder (%s) ---\n", r.Kind, r.Mode); err != nil {
		return err
	}
	if s := r.Summary; s != nil {
		_, _ = p.Fprintf(w, "Strategy %s | R:R %d | Risk %s | Net diff %.3f | %d rungs\n",
			s.Strategy, s.RiskRewardValue, format.Currency(s.RiskPerTrade), s.NetDiff, s.Rungs)
		if s.Stop > 0 && s.AvgEntry > 0 {
			_, _ = fmt.Fprintf(w, "Stop %s, %s from blended entry %s\n",
				format.Number(s.Stop, r.PricePlaces),
				format.Percent(math.Abs(s.AvgEntry-s.Stop)/s.AvgEntry),
				format.Number(s.AvgEntry, r.PricePlaces))
		}
	}
	_, _ = fmt.Fprintf(w, "#   | Entry        | Stop         | Quantity     | Risk      | PnL        | Avg Entry    | Avg Size     | Loss at Stop\n")
	_, _ = fmt.Fprintf(w, "___ | ____________ | ____________ | ____________ | _________ | __________ | ____________ | ____________ | ____________\n")
	for _, row := range r.Ladder {
		_, _ = p.Fprintf(w, "%-3d | %12s | %12s | %12s | %9s | %10s | %12s | %12s | %s\n",
			row.Index,
			format.Number(row.Entry, r.PricePlaces),
			format.Number(row.Stop, r.PricePlaces),
			format.Number(row.Quantity, r.DecimalPlaces),
			format.Currency(row.Risk),
			format.Currency(row.PnL),
			format.Number(row.AvgEntry, r.PricePlaces),
			format.Number(row.AvgSize, r.DecimalPlaces),
			format.Currency(row.NegPnL),
		)
	}
	_, _ = fmt.Fprintf(w, "Total quantity: %s\n", format.Number(r.TotalQuantity, r.DecimalPlaces))

	if r.Margin != nil {
		_, _ = fmt.Fprintf(w, "Liquidation price: %s (maintenance %s)\n",
			format.Number(r.Margin.LiquidationPrice, r.PricePlaces), format.Currency(r.Margin.Maintenance))
	}
	if o := r.Orders; o != nil {
		_, _ = fmt.Fprintf(w, "Orders at %s: %d limit (%s), %d market (%s)\n",
			format.Number(o.CurrentPrice, r.PricePlaces),
			len(o.Limit), format.Number(o.LimitQuantity, r.DecimalPlaces),
			len(o.Market), format.Number(o.MarketQuantity, r.DecimalPlaces))
	}
	for _, z := range r.MarginZones {
		_, _ = fmt.Fprintf(w, "Margin zone: %s - %s\n",
			format.Number(z.Low, r.PricePlaces), format.Number(z.High, r.PricePlaces))
	}
	for _, warning := range r.Warnings {
		if _, err := fmt.Fprintf(w, "Warning: %s\n", warning); err != nil {
			return err
		}
	}
	return nil
}

var csvHeader = []string{
	"index", "entry", "stop", "quantity", "risk", "fee", "pnl", "net",
	"sellPrice", "incurredSell", "incurred", "avgEntry", "avgSize", "avgPnl", "negPnl", "closeP", "constituents",
}

// CsvFormat outputs the ladder rows in comma-separated value format.
func CsvFormat(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range r.Ladder {
		record := []string{
			strconv.Itoa(row.Index),
			formatFloat(row.Entry),
			formatFloat(row.Stop),
			formatFloat(row.Quantity),
			formatFloat(row.Risk),
			formatFloat(row.Fee),
			formatFloat(row.PnL),
			formatFloat(row.Net),
			formatFloat(row.SellPrice),
			formatFloat(row.IncurredSell),
			formatFloat(row.Incurred),
			formatFloat(row.AvgEntry),
			formatFloat(row.AvgSize),
			formatOptional(row.AvgPnL),
			formatFloat(row.NegPnL),
			formatFloat(row.CloseP),
			strconv.Itoa(row.Constituents),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// JSONFormat outputs the report as indented JSON.
func JSONFormat(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// YAMLFormat outputs the report as YAML.
func YAMLFormat(w io.Writer, r Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatOptional renders an absent value as an empty cell.
func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
