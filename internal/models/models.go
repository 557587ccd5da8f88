package models

import (
	"time"

	"gorm.io/datatypes"
)

// Bazaar stores one timestamped reading of an item's bazaar state.
// The data payload mirrors whatever the ingestion side captured for the
// product; field presence is not guaranteed.
type Bazaar struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	ProductID string         `json:"product_id" gorm:"index;not null"`
	Timestamp time.Time      `json:"timestamp" gorm:"index"`
	Data      datatypes.JSON `json:"data"`
}

func (Bazaar) TableName() string { return "bazaar" }

// AuctionSold stores snapshots of completed auction sales per product.
type AuctionSold struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	ProductID string         `json:"product_id" gorm:"index;not null"`
	Timestamp time.Time      `json:"timestamp" gorm:"index"`
	Data      datatypes.JSON `json:"data"`
}

func (AuctionSold) TableName() string { return "auctions_sold" }

// AuctionLB stores lowest-BIN auction snapshots per product.
type AuctionLB struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	ProductID string         `json:"product_id" gorm:"index;not null"`
	Timestamp time.Time      `json:"timestamp" gorm:"index"`
	Data      datatypes.JSON `json:"data"`
}

func (AuctionLB) TableName() string { return "auctions_lb" }

// Firesale records a promotional sale event; at most one per item.
type Firesale struct {
	ItemID    string         `json:"item_id" gorm:"primaryKey"`
	Timestamp time.Time      `json:"timestamp" gorm:"index"`
	Data      datatypes.JSON `json:"data"`
}

func (Firesale) TableName() string { return "firesales" }

// ItemSale is an append-only log of item sale counts.
type ItemSale struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ItemID    string    `json:"item_id" gorm:"index;not null"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp" gorm:"index"`
}

func (ItemSale) TableName() string { return "item_sales" }

// Election records the mayoral election outcome for a game year.
type Election struct {
	Year      int       `json:"year" gorm:"primaryKey"`
	Mayor     string    `json:"mayor"`
	Timestamp time.Time `json:"timestamp"`
}

func (Election) TableName() string { return "elections" }
