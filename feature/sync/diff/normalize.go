package diff

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"douban2feishu/core/utils"
	"douban2feishu/feature/sync/catalog"
	"douban2feishu/feature/sync/models"
)

// Date layouts accepted from scraped snapshots, most specific first.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FieldValue resolves a catalog field's raw value from a domain record.
// Fields with a NestedPath are walked through the record's value tree;
// all others are read directly from the value bag.
func FieldValue(rec models.DomainRecord, f catalog.Field) (any, bool) {
	if f.NestedPath != "" {
		return catalog.ExtractPath(mapAny(rec.Values), f.NestedPath)
	}
	val, ok := rec.Values[f.DomainName]
	if !ok || val == nil {
		return nil, false
	}
	if s, isStr := val.(string); isStr && s == "" {
		return nil, false
	}
	return val, true
}

func mapAny(m map[string]any) any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

// Normalize converts a raw value into the canonical shape that is both
// written to the remote table and fed into the content hash:
//
//   - date kinds become integer epoch-millisecond timestamps
//   - number and rating kinds become float64
//   - text-like kinds become plain strings (Bitable rich-text segments
//     are flattened)
//   - list values stay ordered sequences of normalized elements
//
// A false second return marks the value as absent; absent values are
// omitted from hashes and payloads rather than written as empty strings.
func Normalize(val any, kind catalog.Kind) (any, bool, error) {
	if val == nil {
		return nil, false, nil
	}

	switch kind {
	case catalog.KindDate:
		ms, err := toEpochMillis(val)
		if err != nil {
			return nil, false, err
		}
		return ms, true, nil

	case catalog.KindNumber, catalog.KindRating:
		f, err := toFloat(val)
		if err != nil {
			return nil, false, err
		}
		return f, true, nil

	case catalog.KindText, catalog.KindURL, catalog.KindSingleSelect:
		if list, ok := val.([]any); ok && !isRichText(list) {
			out := make([]any, 0, len(list))
			for _, elem := range list {
				s := flattenText(elem)
				if s != "" {
					out = append(out, s)
				}
			}
			if len(out) == 0 {
				return nil, false, nil
			}
			return out, true, nil
		}
		s := flattenText(val)
		if s == "" {
			return nil, false, nil
		}
		return s, true, nil

	default:
		return nil, false, fmt.Errorf("unknown field kind: %s", kind)
	}
}

// toEpochMillis converts dates in any accepted representation to epoch
// milliseconds. Numeric input is assumed to already be epoch millis.
func toEpochMillis(val any) (int64, error) {
	switch v := val.(type) {
	case time.Time:
		return v.UnixMilli(), nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
				return t.UnixMilli(), nil
			}
		}
		return 0, fmt.Errorf("unparseable date value: %q", v)
	default:
		return 0, fmt.Errorf("unsupported date type: %T", val)
	}
}

// toFloat converts numeric input to float64. Strings must parse as a
// number in full; any other type is an error.
func toFloat(val any) (float64, error) {
	switch v := val.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("unparseable numeric value: %q", v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unsupported numeric type: %T", val)
	}
}

// flattenText renders a value as plain text. Bitable returns text and url
// fields either as plain strings, as {text, link} objects, or as rich-text
// segment lists; all collapse to their visible text.
func flattenText(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case map[string]any:
		if text, ok := v["text"].(string); ok && text != "" {
			return text
		}
		if link, ok := v["link"].(string); ok {
			return link
		}
		return ""
	case []any:
		var sb strings.Builder
		for _, seg := range v {
			sb.WriteString(flattenText(seg))
		}
		return sb.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return utils.ToString(v)
	}
}

// isRichText reports whether a list is a Bitable rich-text segment list
// (to be flattened into one string) rather than a genuine list value.
func isRichText(list []any) bool {
	for _, elem := range list {
		seg, ok := elem.(map[string]any)
		if !ok {
			return false
		}
		if _, hasText := seg["text"]; !hasText {
			return false
		}
	}
	return len(list) > 0
}

// Payload builds the write payload for a record: mapped column IDs to
// normalized values, in catalog order, with absent or malformed values
// omitted.
func Payload(rec models.DomainRecord, fields []catalog.Field, mapping *models.FieldMapping) map[string]any {
	payload := make(map[string]any)
	for _, f := range fields {
		columnID, ok := mapping.ColumnID(f.DomainName)
		if !ok {
			continue
		}
		raw, ok := FieldValue(rec, f)
		if !ok {
			continue
		}
		normalized, present, err := Normalize(raw, f.Kind)
		if err != nil || !present {
			continue
		}
		payload[columnID] = normalized
	}
	return payload
}
