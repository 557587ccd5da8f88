// Package market implements the read-only query and derived-metric layer
// over the snapshot tables written by the ingestion pipeline.
package market

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"skyblock-analytics/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	// ErrNotFound means no rows matched the requested key/window.
	ErrNotFound = errors.New("no matching rows")
	// ErrInsufficientData means a delta needed at least 2 field samples.
	ErrInsufficientData = errors.New("insufficient data points for delta")
)

// Snapshot table names served by the generic series queries.
var (
	TableBazaar      = models.Bazaar{}.TableName()
	TableAuctionSold = models.AuctionSold{}.TableName()
	TableAuctionLB   = models.AuctionLB{}.TableName()
)

var snapshotTables = map[string]bool{
	TableBazaar:      true,
	TableAuctionSold: true,
	TableAuctionLB:   true,
}

// Snapshot is one row of any snapshot table.
type Snapshot struct {
	ProductID string         `json:"product_id"`
	Timestamp time.Time      `json:"timestamp"`
	Data      datatypes.JSON `json:"data"`
}

// Service runs read queries against the snapshot store. Each call scopes a
// gorm session to the caller's context so pooled connections are released
// on every exit path.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) session(ctx context.Context) *gorm.DB {
	return s.db.Session(&gorm.Session{Context: ctx})
}

func checkTable(table string) error {
	if !snapshotTables[table] {
		return fmt.Errorf("unknown snapshot table %q", table)
	}
	return nil
}

// Series returns all snapshots for a product inside the window, ascending
// by timestamp. A nil since means no lower bound. Empty result is not an
// error; callers decide whether empty means 404.
func (s *Service) Series(ctx context.Context, table, productID string, since *time.Time, until time.Time) ([]Snapshot, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	q := s.session(ctx).Table(table).Where("product_id = ?", productID)
	if since != nil {
		q = q.Where("timestamp >= ?", *since)
	}
	var rows []Snapshot
	if err := q.Where("timestamp <= ?", until).
		Order("timestamp asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Latest returns the most recent snapshot for a product, or ErrNotFound.
func (s *Service) Latest(ctx context.Context, table, productID string) (Snapshot, error) {
	if err := checkTable(table); err != nil {
		return Snapshot{}, err
	}
	var rows []Snapshot
	if err := s.session(ctx).Table(table).
		Where("product_id = ?", productID).
		Order("timestamp desc").
		Limit(1).
		Find(&rows).Error; err != nil {
		return Snapshot{}, err
	}
	if len(rows) == 0 {
		return Snapshot{}, ErrNotFound
	}
	return rows[0], nil
}

// LatestPerProduct returns one snapshot per distinct product, the one with
// the maximum timestamp. On timestamp ties any maximal row may win.
func (s *Service) LatestPerProduct(ctx context.Context, table string) ([]Snapshot, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	var rows []Snapshot
	sub := fmt.Sprintf(
		"timestamp = (SELECT MAX(t2.timestamp) FROM %s t2 WHERE t2.product_id = %s.product_id)",
		table, table)
	if err := s.session(ctx).Table(table).
		Where(sub).
		Order("product_id asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	// Ties on MAX(timestamp) return one row each; keep the first.
	out := rows[:0]
	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		if seen[r.ProductID] {
			continue
		}
		seen[r.ProductID] = true
		out = append(out, r)
	}
	return out, nil
}

// DistinctProducts returns the sorted, deduplicated union of product ids
// across the given snapshot tables.
func (s *Service) DistinctProducts(ctx context.Context, tables ...string) ([]string, error) {
	set := make(map[string]bool)
	for _, table := range tables {
		if err := checkTable(table); err != nil {
			return nil, err
		}
		var ids []string
		if err := s.session(ctx).Table(table).
			Distinct("product_id").
			Pluck("product_id", &ids).Error; err != nil {
			return nil, err
		}
		for _, id := range ids {
			set[id] = true
		}
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// FieldDelta is the change of a cumulative payload counter across a window.
type FieldDelta struct {
	First   float64 `json:"first"`
	Last    float64 `json:"last"`
	Delta   float64 `json:"delta"`
	Samples int     `json:"samples"`
}

// Delta computes last-minus-first of a numeric payload field over the
// window. Rows missing the field are skipped; fewer than 2 remaining
// samples is ErrInsufficientData.
func (s *Service) Delta(ctx context.Context, table, productID, field string, since *time.Time, until time.Time) (FieldDelta, error) {
	rows, err := s.Series(ctx, table, productID, since, until)
	if err != nil {
		return FieldDelta{}, err
	}
	var values []float64
	for _, r := range rows {
		if v, ok := models.Float(r.Data, field); ok {
			values = append(values, v)
		}
	}
	if len(values) < 2 {
		return FieldDelta{}, ErrInsufficientData
	}
	first, last := values[0], values[len(values)-1]
	return FieldDelta{
		First:   first,
		Last:    last,
		Delta:   last - first,
		Samples: len(values),
	}, nil
}

// PriceStats summarizes a product's sell price over its full history.
type PriceStats struct {
	MinPrice float64 `json:"min_price"`
	MaxPrice float64 `json:"max_price"`
	AvgPrice float64 `json:"avg_price"`
	Samples  int     `json:"samples"`
}

// Stats aggregates min/max/avg sellPrice for a product; avg is rounded to
// 2 decimal places. Samples counts only rows carrying a numeric sellPrice.
func (s *Service) Stats(ctx context.Context, table, productID string) (PriceStats, error) {
	rows, err := s.Series(ctx, table, productID, nil, time.Now().UTC())
	if err != nil {
		return PriceStats{}, err
	}
	var stats PriceStats
	var sum float64
	for _, r := range rows {
		price, ok := models.Float(r.Data, models.FieldSellPrice)
		if !ok {
			continue
		}
		if stats.Samples == 0 || price < stats.MinPrice {
			stats.MinPrice = price
		}
		if stats.Samples == 0 || price > stats.MaxPrice {
			stats.MaxPrice = price
		}
		sum += price
		stats.Samples++
	}
	if stats.Samples > 0 {
		stats.AvgPrice = math.Round(sum/float64(stats.Samples)*100) / 100
	}
	return stats, nil
}

// Firesales lists firesale events in the window, ascending.
func (s *Service) Firesales(ctx context.Context, since *time.Time, until time.Time) ([]models.Firesale, error) {
	q := s.session(ctx).Model(&models.Firesale{})
	if since != nil {
		q = q.Where("timestamp >= ?", *since)
	}
	var rows []models.Firesale
	if err := q.Where("timestamp <= ?", until).
		Order("timestamp asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ItemSales lists item sale records in the window, ascending.
func (s *Service) ItemSales(ctx context.Context, since *time.Time, until time.Time) ([]models.ItemSale, error) {
	q := s.session(ctx).Model(&models.ItemSale{})
	if since != nil {
		q = q.Where("timestamp >= ?", *since)
	}
	var rows []models.ItemSale
	if err := q.Where("timestamp <= ?", until).
		Order("timestamp asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Elections lists election records in the window, ascending by timestamp.
func (s *Service) Elections(ctx context.Context, since *time.Time, until time.Time) ([]models.Election, error) {
	q := s.session(ctx).Model(&models.Election{})
	if since != nil {
		q = q.Where("timestamp >= ?", *since)
	}
	var rows []models.Election
	if err := q.Where("timestamp <= ?", until).
		Order("timestamp asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
