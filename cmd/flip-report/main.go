// flip-report runs the bazaar flip ranking offline and writes it to a
// JSON or xlsx report file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"skyblock-analytics/internal/config"
	"skyblock-analytics/internal/database"
	"skyblock-analytics/internal/market"

	"github.com/joho/godotenv"
)

var (
	dbURL      = flag.String("db", "", "database DSN (defaults to DATABASE_URL)")
	top        = flag.Int("top", 25, "number of flips to report (10-100)")
	capital    = flag.Float64("capital", 0, "capital budget (defaults to FLIP_CAPITAL)")
	share      = flag.Float64("share", 0, "market share fraction (defaults to FLIP_MARKET_SHARE)")
	outputFile = flag.String("output", "flip_report.json", "output file path (.json or .xlsx)")
	verbose    = flag.Bool("verbose", false, "print the ranking to stdout")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	dsn := *dbURL
	if dsn == "" {
		dsn = cfg.DatabaseURL
	}
	if *capital <= 0 {
		*capital = cfg.FlipCapital
	}
	if *share <= 0 {
		*share = cfg.FlipMarketShare
	}
	if *top < 10 || *top > 100 {
		log.Fatalf("top must be between 10 and 100, got %d", *top)
	}

	db, err := database.Initialize(dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	svc := market.NewService(db)
	flips, err := svc.TopFlips(ctx, *top, *capital, *share)
	if err != nil {
		log.Fatalf("Ranking failed: %v", err)
	}
	log.Printf("Ranked %d flip opportunities (capital=%.0f, share=%.2f)",
		len(flips), *capital, *share)

	if *verbose {
		for i, f := range flips {
			fmt.Printf("%3d. %-30s spread=%.1f units=%d profit=%.1f roi=%.6f\n",
				i+1, f.ProductID, f.Spread, f.MaxUnits, f.Profit, f.ROI)
		}
	}

	if err := writeReport(*outputFile, flips, *capital, *share); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}
	log.Printf("Report written to %s", *outputFile)
}

func writeReport(path string, flips []market.FlipOpportunity, capital, share float64) error {
	if strings.HasSuffix(path, ".xlsx") {
		workbook, err := market.FlipWorkbook(flips, capital, share)
		if err != nil {
			return err
		}
		defer workbook.Close()
		return workbook.SaveAs(path)
	}

	report := map[string]interface{}{
		"generated_at": time.Now().UTC(),
		"capital":      capital,
		"share":        share,
		"total":        len(flips),
		"flips":        flips,
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
