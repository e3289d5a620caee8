package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/ozavala/Clix-sub000/internal/app"
	"github.com/ozavala/Clix-sub000/internal/core"
)

// Run executes a one-shot CLI command and exits. args is os.Args[1:], so the
// first element is the subcommand name. The caller identity comes from the
// binary's flags/environment, not from here.
func Run(ctx context.Context, svc app.ApplicationService, caller app.Caller, args []string) {
	if len(args) == 0 {
		log.Fatal("Usage: clix <command> [args]\nAvailable: post, report, dashboard, apportion, remit, recover")
	}

	switch args[0] {
	case "post", "p":
		var req app.PostDocumentRequest
		if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
			log.Fatalf("Invalid JSON: %v", err)
		}
		result, err := svc.PostDocument(ctx, caller, req)
		if err != nil {
			log.Fatalf("Posting failed: %v", err)
		}
		printJSON(result)

	case "report", "rep", "r":
		if len(args) < 2 {
			log.Fatal("Usage: clix report <year> [month]")
		}
		year, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatalf("Invalid year: %s", args[1])
		}

		var report *core.TaxReport
		if len(args) >= 3 {
			month, err := strconv.Atoi(args[2])
			if err != nil {
				log.Fatalf("Invalid month: %s", args[2])
			}
			report, err = svc.TaxReportMonth(ctx, caller, nil, year, month)
			if err != nil {
				log.Fatalf("Report failed: %v", err)
			}
		} else {
			report, err = svc.TaxReportYear(ctx, caller, nil, year)
			if err != nil {
				log.Fatalf("Report failed: %v", err)
			}
		}
		printTaxReport(report)

	case "dashboard", "dash", "d":
		dash, err := svc.TaxDashboard(ctx, caller, nil)
		if err != nil {
			log.Fatalf("Dashboard failed: %v", err)
		}
		fmt.Println("CURRENT MONTH")
		printTaxReport(dash.CurrentMonth)
		fmt.Println("PREVIOUS MONTH")
		printTaxReport(dash.PreviousMonth)
		fmt.Println("YEAR TO DATE")
		printTaxReport(dash.YearToDate)

	case "apportion", "app", "a":
		if len(args) < 2 {
			log.Fatal("Usage: clix apportion <purchase-order-id>")
		}
		poID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			log.Fatalf("Invalid purchase order id: %s", args[1])
		}
		result, err := svc.ApportionLandedCosts(ctx, caller, nil, poID)
		if err != nil {
			log.Fatalf("Apportionment failed: %v", err)
		}
		printJSON(result)

	case "remit":
		runTaxTransition(ctx, svc, caller, args[1:], svc.MarkTaxRemitted, "remitted")

	case "recover":
		runTaxTransition(ctx, svc, caller, args[1:], svc.MarkTaxRecovered, "recovered")

	default:
		log.Fatalf("Unknown command: %s\nAvailable: post, report, dashboard, apportion, remit, recover", args[0])
	}
}

func runTaxTransition(
	ctx context.Context,
	svc app.ApplicationService,
	caller app.Caller,
	rawIDs []string,
	transition func(context.Context, app.Caller, app.MarkTaxRequest) (int64, error),
	verb string,
) {
	if len(rawIDs) == 0 {
		log.Fatalf("Usage: clix %s <id> [id...]", verb)
	}
	ids := make([]int64, len(rawIDs))
	for i, raw := range rawIDs {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			log.Fatalf("Invalid record id: %s", raw)
		}
		ids[i] = id
	}

	moved, err := transition(ctx, caller, app.MarkTaxRequest{IDs: ids})
	if err != nil {
		log.Fatalf("Transition failed: %v", err)
	}
	fmt.Printf("%d record(s) %s.\n", moved, verb)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func printTaxReport(report *core.TaxReport) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  TAX REPORT  %s to %s\n",
		report.Period.Start.Format("2006-01-02"), report.Period.End.Format("2006-01-02"))
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  %-24s %15s\n", "Tax collected", report.Summary.TaxCollectedTotal.StringFixed(2))
	fmt.Printf("  %-24s %15s\n", "Tax paid", report.Summary.TaxPaidTotal.StringFixed(2))
	fmt.Printf("  %-24s %15s  (%s)\n", "Net balance", report.Summary.NetTaxBalance.StringFixed(2), report.Summary.BalanceStatus)
	if len(report.BreakdownByRate) > 0 {
		fmt.Println(strings.Repeat("-", 62))
		fmt.Printf("  %-20s %12s %12s %12s\n", "RATE", "COLLECTED", "PAID", "NET")
		for _, b := range report.BreakdownByRate {
			fmt.Printf("  %-20s %12s %12s %12s\n",
				b.RateName, b.TaxCollected.StringFixed(2), b.TaxPaid.StringFixed(2), b.NetTaxBalance.StringFixed(2))
		}
	}
	fmt.Println(strings.Repeat("=", 62))
}
