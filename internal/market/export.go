package market

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const flipSheet = "Flips"

// FlipWorkbook renders a flip ranking as an xlsx workbook, one row per
// opportunity, for download or offline reporting.
func FlipWorkbook(flips []FlipOpportunity, capital, share float64) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", flipSheet); err != nil {
		return nil, err
	}

	headers := []string{
		"Rank", "Product", "Sell Price", "Buy Price", "Spread",
		"Weekly Volume", "Max Units", "Profit", "ROI", "Snapshot Time",
	}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(flipSheet, cell, h); err != nil {
			return nil, err
		}
	}

	for i, flip := range flips {
		values := []interface{}{
			i + 1,
			flip.ProductID,
			flip.SellPrice,
			flip.BuyPrice,
			flip.Spread,
			flip.WeeklyVolume,
			flip.MaxUnits,
			flip.Profit,
			flip.ROI,
			flip.Timestamp.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(flipSheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	summary := fmt.Sprintf("capital=%.0f share=%.2f generated=%s",
		capital, share, time.Now().UTC().Format(time.RFC3339))
	cell, err := excelize.CoordinatesToCellName(1, len(flips)+3)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellValue(flipSheet, cell, summary); err != nil {
		return nil, err
	}
	return f, nil
}
