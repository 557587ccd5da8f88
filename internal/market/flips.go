package market

import (
	"context"
	"math"
	"sort"
	"time"

	"skyblock-analytics/internal/models"
)

// FlipOpportunity is one ranked bazaar flip: sell to the top buy order,
// relist at the instant-buy price, pocket the spread.
type FlipOpportunity struct {
	ProductID    string    `json:"product_id"`
	SellPrice    float64   `json:"sell_price"`
	BuyPrice     float64   `json:"buy_price"`
	Spread       float64   `json:"spread"`
	WeeklyVolume float64   `json:"weekly_volume"`
	MaxUnits     int64     `json:"max_units"`
	Profit       float64   `json:"profit"`
	ROI          float64   `json:"roi"`
	Timestamp    time.Time `json:"timestamp"`
}

// TopFlips ranks bazaar products by estimated flip profit under a capital
// budget and a market-share cap, descending, truncated to n.
//
// Note the order-book sign convention: sellPrice is the top bid (what an
// instant seller receives) and buyPrice is the top ask (what an instant
// buyer pays), so the flip margin is buyPrice - sellPrice.
func (s *Service) TopFlips(ctx context.Context, n int, capital, share float64) ([]FlipOpportunity, error) {
	snaps, err := s.LatestPerProduct(ctx, TableBazaar)
	if err != nil {
		return nil, err
	}

	flips := make([]FlipOpportunity, 0, len(snaps))
	for _, snap := range snaps {
		sell, ok := models.Float(snap.Data, models.FieldSellPrice)
		if !ok || sell <= 0 {
			continue
		}
		buy, ok := models.Float(snap.Data, models.FieldBuyPrice)
		if !ok || buy <= 0 {
			continue
		}
		volume, ok := models.Float(snap.Data, models.FieldSellMovingWeek)
		if !ok || volume <= 0 {
			continue
		}

		spread := buy - sell
		if spread <= 0 {
			continue
		}

		capByCapital := int64(math.Floor(capital / buy))
		capByShare := int64(math.Floor(share * volume))
		maxUnits := capByCapital
		if capByShare < maxUnits {
			maxUnits = capByShare
		}
		if maxUnits < 1 {
			continue
		}

		profit := spread * float64(maxUnits)
		flips = append(flips, FlipOpportunity{
			ProductID:    snap.ProductID,
			SellPrice:    sell,
			BuyPrice:     buy,
			Spread:       spread,
			WeeklyVolume: volume,
			MaxUnits:     maxUnits,
			Profit:       profit,
			ROI:          profit / capital,
			Timestamp:    snap.Timestamp,
		})
	}

	sort.SliceStable(flips, func(i, j int) bool {
		return flips[i].Profit > flips[j].Profit
	})
	if n > 0 && len(flips) > n {
		flips = flips[:n]
	}
	return flips, nil
}
