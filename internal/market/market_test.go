package market

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"skyblock-analytics/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Bazaar{}, &models.AuctionSold{}, &models.AuctionLB{},
		&models.Firesale{}, &models.ItemSale{}, &models.Election{},
	))
	return db
}

func payload(t *testing.T, fields map[string]interface{}) datatypes.JSON {
	t.Helper()
	raw, err := json.Marshal(fields)
	require.NoError(t, err)
	return datatypes.JSON(raw)
}

func seedBazaar(t *testing.T, db *gorm.DB, product string, ts time.Time, fields map[string]interface{}) {
	t.Helper()
	require.NoError(t, db.Create(&models.Bazaar{
		ProductID: product,
		Timestamp: ts,
		Data:      payload(t, fields),
	}).Error)
}
