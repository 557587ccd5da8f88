package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"skyblock-analytics/internal/config"
	"skyblock-analytics/internal/market"
	"skyblock-analytics/internal/models"
	"skyblock-analytics/internal/timerange"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type APIHandler struct {
	db     *gorm.DB
	market *market.Service
	cfg    *config.Config
}

func SetupRoutes(r *gin.RouterGroup, db *gorm.DB, cfg *config.Config) *APIHandler {
	handler := &APIHandler{
		db:     db,
		market: market.NewService(db),
		cfg:    cfg,
	}

	r.GET("/items", handler.ListItems)
	r.GET("/prices/:item_id", handler.GetPrices)
	r.GET("/auctions/:item_id", handler.GetAuctionPrices)
	r.GET("/sold/:item_id", handler.GetSoldDelta)
	r.GET("/sold/:item_id/latest", handler.GetSoldLatest)
	r.GET("/firesales", handler.ListFiresales)
	r.GET("/item_sales", handler.ListItemSales)
	r.GET("/elections", handler.ListElections)
	r.GET("/top", handler.GetTopFlips)
	r.GET("/top/export", handler.ExportTopFlips)
	r.GET("/stats/:item_id", handler.GetStats)
	r.GET("/compare", handler.CompareItems)

	return handler
}

// window resolves the range query parameter against the current instant.
// Unrecognized tokens fall back to "no lower bound", same as "all".
func window(c *gin.Context) (*time.Time, time.Time) {
	now := time.Now().UTC()
	return timerange.LowerBound(c.DefaultQuery("range", "1week"), now), now
}

func storageError(c *gin.Context, err error) {
	log.Printf("query failed: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
}

// pricePoints shapes snapshot rows as {timestamp, price}. Rows without a
// numeric sellPrice keep their place in the series with a null price.
func pricePoints(rows []market.Snapshot) []gin.H {
	points := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		var price *float64
		if v, ok := models.Float(row.Data, models.FieldSellPrice); ok {
			price = &v
		}
		points = append(points, gin.H{
			"timestamp": row.Timestamp.UTC().Format(time.RFC3339),
			"price":     price,
		})
	}
	return points
}

// ListItems returns the sorted union of tracked product ids
// GET /items
func (h *APIHandler) ListItems(c *gin.Context) {
	ids, err := h.market.DistinctProducts(c.Request.Context(),
		market.TableBazaar, market.TableAuctionSold, market.TableAuctionLB)
	if err != nil {
		storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, ids)
}

// GetPrices returns the ascending bazaar sell price series for an item
// GET /prices/:item_id?range=all|6months|2months|1week|1day|1hour|latest
func (h *APIHandler) GetPrices(c *gin.Context) {
	itemID := c.Param("item_id")
	since, now := window(c)

	rows, err := h.market.Series(c.Request.Context(), market.TableBazaar, itemID, since, now)
	if err != nil {
		storageError(c, err)
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("No bazaar price data for item %s", itemID),
		})
		return
	}
	c.JSON(http.StatusOK, pricePoints(rows))
}

// GetAuctionPrices returns the ascending auction sale price series
// GET /auctions/:item_id?range=...
func (h *APIHandler) GetAuctionPrices(c *gin.Context) {
	itemID := c.Param("item_id")
	since, now := window(c)

	rows, err := h.market.Series(c.Request.Context(), market.TableAuctionSold, itemID, since, now)
	if err != nil {
		storageError(c, err)
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("No auction data for item %s", itemID),
		})
		return
	}
	c.JSON(http.StatusOK, pricePoints(rows))
}

// GetSoldDelta returns the amount sold across the window, computed as the
// change of the cumulative sellMovingWeek counter
// GET /sold/:item_id?range=...
func (h *APIHandler) GetSoldDelta(c *gin.Context) {
	itemID := c.Param("item_id")
	since, now := window(c)

	delta, err := h.market.Delta(c.Request.Context(), market.TableBazaar, itemID,
		models.FieldSellMovingWeek, since, now)
	if errors.Is(err, market.ErrInsufficientData) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("Insufficient bazaar sold data for item %s", itemID),
		})
		return
	}
	if err != nil {
		storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"item_id": itemID,
		"range":   c.DefaultQuery("range", "1week"),
		"sold":    delta.Delta,
		"first":   delta.First,
		"last":    delta.Last,
		"samples": delta.Samples,
	})
}

// GetSoldLatest returns the most recent moving sold volume reading
// GET /sold/:item_id/latest
func (h *APIHandler) GetSoldLatest(c *gin.Context) {
	itemID := c.Param("item_id")

	snap, err := h.market.Latest(c.Request.Context(), market.TableBazaar, itemID)
	if errors.Is(err, market.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("No bazaar sold data for item %s", itemID),
		})
		return
	}
	if err != nil {
		storageError(c, err)
		return
	}

	var volume *float64
	if v, ok := models.Float(snap.Data, models.FieldSellMovingWeek); ok {
		volume = &v
	}
	c.JSON(http.StatusOK, gin.H{
		"item_id":          itemID,
		"timestamp":        snap.Timestamp.UTC().Format(time.RFC3339),
		"sold_moving_week": volume,
	})
}

// ListFiresales returns firesale events in the window, oldest first
// GET /firesales?range=...
func (h *APIHandler) ListFiresales(c *gin.Context) {
	since, now := window(c)
	rows, err := h.market.Firesales(c.Request.Context(), since, now)
	if err != nil {
		storageError(c, err)
		return
	}
	if rows == nil {
		rows = []models.Firesale{}
	}
	c.JSON(http.StatusOK, rows)
}

// ListItemSales returns item sale records in the window, oldest first
// GET /item_sales?range=...
func (h *APIHandler) ListItemSales(c *gin.Context) {
	since, now := window(c)
	rows, err := h.market.ItemSales(c.Request.Context(), since, now)
	if err != nil {
		storageError(c, err)
		return
	}
	if rows == nil {
		rows = []models.ItemSale{}
	}
	c.JSON(http.StatusOK, rows)
}

// ListElections returns elections in the window, oldest first
// GET /elections?range=...
func (h *APIHandler) ListElections(c *gin.Context) {
	since, now := window(c)
	rows, err := h.market.Elections(c.Request.Context(), since, now)
	if err != nil {
		storageError(c, err)
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, e := range rows {
		out = append(out, gin.H{
			"year":      e.Year,
			"mayor":     e.Mayor,
			"timestamp": e.Timestamp.UTC().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, out)
}

// flipParams validates top/capital/share for the ranking endpoints.
func (h *APIHandler) flipParams(c *gin.Context) (n int, capital, share float64, ok bool) {
	n = 25
	if raw := c.Query("top"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 10 || parsed > 100 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "top must be an integer between 10 and 100",
			})
			return 0, 0, 0, false
		}
		n = parsed
	}
	capital = h.cfg.FlipCapital
	if raw := c.Query("capital"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "capital must be a positive number",
			})
			return 0, 0, 0, false
		}
		capital = parsed
	}
	share = h.cfg.FlipMarketShare
	if raw := c.Query("share"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "share must be a positive fraction",
			})
			return 0, 0, 0, false
		}
		share = parsed
	}
	return n, capital, share, true
}

// GetTopFlips ranks bazaar products by estimated flip profit
// GET /top?top=25&capital=1000000000&share=0.1
func (h *APIHandler) GetTopFlips(c *gin.Context) {
	n, capital, share, ok := h.flipParams(c)
	if !ok {
		return
	}
	flips, err := h.market.TopFlips(c.Request.Context(), n, capital, share)
	if err != nil {
		storageError(c, err)
		return
	}
	if flips == nil {
		flips = []market.FlipOpportunity{}
	}
	c.JSON(http.StatusOK, gin.H{
		"capital": capital,
		"share":   share,
		"total":   len(flips),
		"data":    flips,
	})
}

// ExportTopFlips downloads the flip ranking as an xlsx workbook
// GET /top/export?top=25
func (h *APIHandler) ExportTopFlips(c *gin.Context) {
	n, capital, share, ok := h.flipParams(c)
	if !ok {
		return
	}
	flips, err := h.market.TopFlips(c.Request.Context(), n, capital, share)
	if err != nil {
		storageError(c, err)
		return
	}
	workbook, err := market.FlipWorkbook(flips, capital, share)
	if err != nil {
		storageError(c, err)
		return
	}
	defer workbook.Close()

	filename := fmt.Sprintf("flips_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := workbook.Write(c.Writer); err != nil {
		log.Printf("xlsx write failed: %v", err)
	}
}

// GetStats summarizes an item's bazaar sell price over its full history
// GET /stats/:item_id
func (h *APIHandler) GetStats(c *gin.Context) {
	itemID := c.Param("item_id")

	stats, err := h.market.Stats(c.Request.Context(), market.TableBazaar, itemID)
	if err != nil {
		storageError(c, err)
		return
	}
	if stats.Samples == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("No bazaar price data for item %s", itemID),
		})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// CompareItems maps each requested item to its ascending price series.
// Items without data map to an empty series instead of failing the call
// GET /compare?items=A&items=B&range=...
func (h *APIHandler) CompareItems(c *gin.Context) {
	items := c.QueryArray("items")
	if len(items) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "at least one items parameter is required",
		})
		return
	}
	since, now := window(c)

	out := make(map[string][]gin.H, len(items))
	for _, itemID := range items {
		itemID = strings.TrimSpace(itemID)
		if itemID == "" {
			continue
		}
		rows, err := h.market.Series(c.Request.Context(), market.TableBazaar, itemID, since, now)
		if err != nil {
			storageError(c, err)
			return
		}
		out[itemID] = pricePoints(rows)
	}
	c.JSON(http.StatusOK, out)
}
