// Command groupify parses a receipt text dump, splits it equally
// between the given people and prints who pays whom.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/shopspring/decimal"

	"groupify/internal/export"
	"groupify/internal/models"
	"groupify/internal/parser"
	"groupify/internal/service"
	"groupify/internal/splitter"
	"groupify/pkg/logging"
)

func main() {
	fs := ff.NewFlagSet("groupify")
	var (
		inputPath  = fs.StringLong("input", "", "Path to the OCR text file (use '-' for stdin)")
		peopleCSV  = fs.StringLong("people", "", "Comma-separated list of people splitting the bill")
		tip        = fs.StringLong("tip", "0", "Tip amount to add on top of the receipt total")
		workers    = fs.IntLong("workers", 1, "Number of parallel extraction workers")
		exportKind = fs.StringLong("export", "", "Export format: 'json' or 'xlsx'")
		outPath    = fs.StringLong("out", "", "Export output file (default: stdout for json)")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("GROUPIFY"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.SetupCLI()

	if *inputPath == "" {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintln(os.Stderr, "error: --input is required")
		os.Exit(1)
	}
	people := splitCSV(*peopleCSV)
	if len(people) == 0 {
		fmt.Fprintln(os.Stderr, "error: --people is required, e.g. --people Ana,Boris")
		os.Exit(1)
	}
	tipAmount, err := decimal.NewFromString(*tip)
	if err != nil || tipAmount.IsNegative() {
		fmt.Fprintln(os.Stderr, "error: --tip must be a non-negative amount")
		os.Exit(1)
	}

	rawText, err := readInput(*inputPath)
	if err != nil {
		logger.Error("Failed to read input", "path", *inputPath, "error", err)
		os.Exit(1)
	}

	p := parser.New(parser.DefaultConfig(), logger)
	var (
		receipt *models.Receipt
		stats   parser.Stats
	)
	if *workers > 1 {
		receipt, stats = p.ParseParallel(context.Background(), rawText, *workers)
	} else {
		receipt, stats = p.Parse(rawText)
	}
	logger.Info("Receipt parsed",
		"items", len(receipt.Items),
		"total", receipt.Total,
		"currency", receipt.Currency,
		"total_detected", stats.TotalDetected,
	)
	if len(receipt.Items) == 0 {
		logger.Warn("No items recognized in input")
	}

	if tipAmount.IsPositive() {
		receipt.AddTip(tipAmount)
	}

	splitter.AssignEqually(receipt, people)
	balances := splitter.CalculateBalances(receipt, people)
	settlements := splitter.OptimizeSettlements(balances, receipt.Total, people, receipt.Currency)

	equalShare := receipt.Total.Div(decimal.NewFromInt(int64(len(people)))).Round(2)

	printSummary(os.Stdout, receipt, people, balances, equalShare, settlements)

	if *exportKind != "" {
		result := &service.SplitResult{
			Balances:    balances,
			Settlements: settlements,
			EqualShare:  equalShare,
			People:      people,
		}
		if err := writeExport(*exportKind, *outPath, export.BuildDocument(receipt, result)); err != nil {
			logger.Error("Export failed", "format", *exportKind, "error", err)
			os.Exit(1)
		}
	}
}

func printSummary(w io.Writer, receipt *models.Receipt, people []string, balances map[string]decimal.Decimal, equalShare decimal.Decimal, settlements []models.Settlement) {
	fmt.Fprintln(w, "Receipt")
	fmt.Fprintln(w, "-------")
	for _, item := range receipt.Items {
		fmt.Fprintf(w, "  %-32s x%-3d %10s\n", item.Name, item.Quantity, item.Price.StringFixed(2))
	}
	if receipt.TipAmount.IsPositive() {
		fmt.Fprintf(w, "  %-37s %10s\n", "Tip", receipt.TipAmount.StringFixed(2))
	}
	fmt.Fprintf(w, "  %-37s %10s\n", "Total", export.FormatAmount(receipt.Total, receipt.Currency))
	fmt.Fprintf(w, "\nEqual share per person: %s\n", export.FormatAmount(equalShare, receipt.Currency))

	fmt.Fprintln(w, "\nBalances")
	fmt.Fprintln(w, "--------")
	for _, person := range people {
		fmt.Fprintf(w, "  %-24s %10s\n", person, balances[person].StringFixed(2))
	}

	fmt.Fprintln(w, "\nSettlements")
	fmt.Fprintln(w, "-----------")
	if len(settlements) == 0 {
		fmt.Fprintln(w, "  Everyone is settled up.")
		return
	}
	for _, st := range settlements {
		fmt.Fprintf(w, "  %s pays %s %s\n", st.FromPerson, st.ToPerson, export.FormatAmount(st.Amount, st.Currency))
	}
}

func writeExport(format, outPath string, doc export.Document) error {
	var out io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", outPath, err)
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "json":
		return export.WriteJSON(out, doc)
	case "xlsx":
		if outPath == "" {
			return fmt.Errorf("xlsx export requires --out")
		}
		return export.WriteXLSX(out, doc)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}
