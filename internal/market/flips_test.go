package market

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopFlipsReferenceNumbers(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	now := time.Now().UTC()

	seedBazaar(t, db, "REFERENCE_ITEM", now, map[string]interface{}{
		"sellPrice":      10.0,
		"buyPrice":       12.0,
		"sellMovingWeek": 1000.0,
	})
	seedBazaar(t, db, "BIGGER_FLIP", now, map[string]interface{}{
		"sellPrice":      100.0,
		"buyPrice":       150.0,
		"sellMovingWeek": 1000.0,
	})
	seedBazaar(t, db, "SMALLER_FLIP", now, map[string]interface{}{
		"sellPrice":      10.0,
		"buyPrice":       11.0,
		"sellMovingWeek": 10.0,
	})

	flips, err := svc.TopFlips(ctx, 10, 1_000_000_000, 0.10)
	require.NoError(t, err)
	require.Len(t, flips, 3)

	var ref FlipOpportunity
	for _, f := range flips {
		if f.ProductID == "REFERENCE_ITEM" {
			ref = f
		}
	}
	require.NotEmpty(t, ref.ProductID)
	assert.Equal(t, 2.0, ref.Spread)
	// min(floor(1e9/12)=83333333, floor(0.10*1000)=100)
	assert.Equal(t, int64(100), ref.MaxUnits)
	assert.Equal(t, 200.0, ref.Profit)
	assert.InDelta(t, 200.0/1e9, ref.ROI, 1e-15)

	// descending by profit: BIGGER_FLIP (5000) > REFERENCE_ITEM (200) > SMALLER_FLIP (1)
	assert.Equal(t, "BIGGER_FLIP", flips[0].ProductID)
	assert.Equal(t, "REFERENCE_ITEM", flips[1].ProductID)
	assert.Equal(t, "SMALLER_FLIP", flips[2].ProductID)
}

func TestTopFlipsDiscards(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	now := time.Now().UTC()

	// negative spread: instant-buy below instant-sell
	seedBazaar(t, db, "NEGATIVE_SPREAD", now, map[string]interface{}{
		"sellPrice":      8.0,
		"buyPrice":       5.0,
		"sellMovingWeek": 1000.0,
	})
	// missing volume field
	seedBazaar(t, db, "NO_VOLUME", now, map[string]interface{}{
		"sellPrice": 10.0,
		"buyPrice":  12.0,
	})
	// zero price
	seedBazaar(t, db, "ZERO_PRICE", now, map[string]interface{}{
		"sellPrice":      0.0,
		"buyPrice":       12.0,
		"sellMovingWeek": 1000.0,
	})
	// share cap floors to zero units
	seedBazaar(t, db, "TOO_THIN", now, map[string]interface{}{
		"sellPrice":      10.0,
		"buyPrice":       12.0,
		"sellMovingWeek": 5.0,
	})
	// the only survivor
	seedBazaar(t, db, "GOOD_FLIP", now, map[string]interface{}{
		"sellPrice":      10.0,
		"buyPrice":       12.0,
		"sellMovingWeek": 1000.0,
	})

	flips, err := svc.TopFlips(ctx, 10, 1_000_000_000, 0.10)
	require.NoError(t, err)
	require.Len(t, flips, 1)
	assert.Equal(t, "GOOD_FLIP", flips[0].ProductID)
}

func TestTopFlipsUsesLatestSnapshotOnly(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	now := time.Now().UTC()

	// stale snapshot was profitable, latest one is not
	seedBazaar(t, db, "WAS_GOOD", now.Add(-time.Hour), map[string]interface{}{
		"sellPrice":      10.0,
		"buyPrice":       20.0,
		"sellMovingWeek": 1000.0,
	})
	seedBazaar(t, db, "WAS_GOOD", now, map[string]interface{}{
		"sellPrice":      10.0,
		"buyPrice":       9.0,
		"sellMovingWeek": 1000.0,
	})

	flips, err := svc.TopFlips(ctx, 10, 1_000_000_000, 0.10)
	require.NoError(t, err)
	assert.Empty(t, flips)
}

func TestTopFlipsTruncation(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, p := range []string{"A", "B", "C"} {
		seedBazaar(t, db, p, now, map[string]interface{}{
			"sellPrice":      10.0,
			"buyPrice":       12.0,
			"sellMovingWeek": 1000.0,
		})
	}
	flips, err := svc.TopFlips(ctx, 2, 1_000_000_000, 0.10)
	require.NoError(t, err)
	assert.Len(t, flips, 2)
}

func TestFlipWorkbook(t *testing.T) {
	flips := []FlipOpportunity{{
		ProductID: "ENCHANTED_COAL", SellPrice: 10, BuyPrice: 12, Spread: 2,
		WeeklyVolume: 1000, MaxUnits: 100, Profit: 200, ROI: 2e-7,
		Timestamp: time.Now().UTC(),
	}}
	f, err := FlipWorkbook(flips, 1e9, 0.1)
	require.NoError(t, err)
	defer f.Close()

	name, err := f.GetCellValue("Flips", "B2")
	require.NoError(t, err)
	assert.Equal(t, "ENCHANTED_COAL", name)
}
