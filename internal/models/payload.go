package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// Payload field names written by the ingestion side.
const (
	FieldSellPrice      = "sellPrice"
	FieldBuyPrice       = "buyPrice"
	FieldSellMovingWeek = "sellMovingWeek"
)

// Float extracts a numeric payload field. Absent, null, or non-numeric
// values report ok=false rather than zero; ingestion sometimes writes
// numbers as JSON strings, so those are coerced too.
func Float(data datatypes.JSON, field string) (float64, bool) {
	if len(data) == 0 {
		return 0, false
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(data, &payload); err != nil {
		return 0, false
	}
	raw, found := payload[field]
	if !found {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if err := json.Unmarshal([]byte(s), &f); err == nil {
			return f, true
		}
	}
	return 0, false
}
