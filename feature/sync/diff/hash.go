package diff

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"douban2feishu/core/feishu"
	"douban2feishu/feature/sync/catalog"
	"douban2feishu/feature/sync/models"
)

// HashIncoming computes the content hash of a domain record over its
// mapped field values. Serialization order is fixed by catalog order, so
// the hash is deterministic across runs and across map iteration orders.
func HashIncoming(rec models.DomainRecord, fields []catalog.Field, mapping *models.FieldMapping) (string, error) {
	h := sha256.New()

	for _, f := range fields {
		if _, ok := mapping.ColumnID(f.DomainName); !ok {
			continue
		}
		raw, ok := FieldValue(rec, f)
		if !ok {
			continue
		}
		normalized, present, err := Normalize(raw, f.Kind)
		if err != nil {
			return "", fmt.Errorf("field %s: %w", f.DomainName, err)
		}
		if !present {
			continue
		}
		writeTerm(h, f.DomainName, normalized)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashExisting recomputes the content hash from a remote row's field
// values, using the same catalog order and normalization as HashIncoming
// so that unchanged records hash identically.
func HashExisting(rec feishu.Record, fields []catalog.Field, mapping *models.FieldMapping) (string, error) {
	h := sha256.New()

	for _, f := range fields {
		columnID, ok := mapping.ColumnID(f.DomainName)
		if !ok {
			continue
		}
		raw, ok := rec.Fields[columnID]
		if !ok || raw == nil {
			continue
		}
		normalized, present, err := Normalize(raw, f.Kind)
		if err != nil {
			return "", fmt.Errorf("field %s: %w", f.DomainName, err)
		}
		if !present {
			continue
		}
		writeTerm(h, f.DomainName, normalized)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// writeTerm appends one "name=value|" term to the hash using a canonical
// rendering per value shape.
func writeTerm(h interface{ Write([]byte) (int, error) }, name string, val any) {
	_, _ = h.Write([]byte(name))
	_, _ = h.Write([]byte{'='})
	_, _ = h.Write([]byte(canonical(val)))
	_, _ = h.Write([]byte{'|'})
}

// canonical renders a normalized value deterministically. Floats that are
// whole numbers render without a fraction so 4 and 4.0 hash identically.
func canonical(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(v))
		for _, elem := range v {
			parts = append(parts, canonical(elem))
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		// Fallback for shapes Normalize never produces today.
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
