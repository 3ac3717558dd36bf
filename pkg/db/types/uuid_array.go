package dbtypes

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// UUIDArray maps a Postgres uuid[] column. A split record stores its child
// order ids with it, preserving creation order.
type UUIDArray []uuid.UUID

// Value renders the Postgres array literal {uuid,uuid}.
func (a UUIDArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "{}", nil
	}
	ids := make([]string, len(a))
	for i, id := range a {
		ids[i] = id.String()
	}
	return "{" + strings.Join(ids, ",") + "}", nil
}

// Scan parses the Postgres array literal back into uuids.
func (a *UUIDArray) Scan(src any) error {
	if src == nil {
		*a = UUIDArray{}
		return nil
	}
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("UUIDArray: unsupported Scan type %T", src)
	}

	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "{")
	raw = strings.TrimSuffix(raw, "}")
	if strings.TrimSpace(raw) == "" {
		*a = UUIDArray{}
		return nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, part := range parts {
		id, err := uuid.Parse(strings.TrimSpace(strings.Trim(part, `"`)))
		if err != nil {
			return fmt.Errorf("UUIDArray: parse %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	*a = UUIDArray(ids)
	return nil
}

// Contains reports whether the array holds the given id.
func (a UUIDArray) Contains(id uuid.UUID) bool {
	for _, candidate := range a {
		if candidate == id {
			return true
		}
	}
	return false
}
