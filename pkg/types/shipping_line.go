package types

import (
	"database/sql/driver"
	"encoding/json"
)

// ShippingLine is the synthetic shipping charge attached to a child order
// when the parent's shipping total is spread across vendors. It lives in a
// JSONB column on the child order row.
type ShippingLine struct {
	Code       string `json:"code"`
	Title      string `json:"title"`
	PriceCents int    `json:"price_cents"`
}

func (s *ShippingLine) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func (s *ShippingLine) Scan(value interface{}) error {
	if value == nil {
		*s = ShippingLine{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, s)
}

// JSONMap holds an arbitrary JSON object in a JSONB column. Line item
// metadata uses it; the split copies metadata verbatim onto child items.
type JSONMap map[string]any

func (j *JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded JSONMap
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*j = decoded
	return nil
}
