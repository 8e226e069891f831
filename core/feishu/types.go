package feishu

// Credentials identifies one Feishu application.
// They are supplied per call by the credential provider; the client holds
// no global credential state beyond the token cache.
type Credentials struct {
	AppID     string `json:"app_id"`
	AppSecret string `json:"app_secret"`
}

// Field type codes as defined by the Bitable API.
const (
	FieldTypeText         = 1
	FieldTypeNumber       = 2
	FieldTypeSingleSelect = 3
	FieldTypeDate         = 5
	FieldTypeURL          = 15
)

// UI types that refine a field type code.
const (
	UITypeRating = "Rating"
)

// Field is one column as currently defined on a remote table.
type Field struct {
	ID       string         `json:"field_id"`
	Name     string         `json:"field_name"`
	Type     int            `json:"type"`
	UIType   string         `json:"ui_type,omitempty"`
	Property map[string]any `json:"property,omitempty"`
}

// FieldSpec describes a column to create. Creation is NOT idempotent by
// name: creating a spec whose Name already exists produces a second,
// distinct column, so callers must list before creating.
type FieldSpec struct {
	Name     string         `json:"field_name"`
	Type     int            `json:"type"`
	UIType   string         `json:"ui_type,omitempty"`
	Property map[string]any `json:"property,omitempty"`
}

// Record is one row of a remote table. RecordID is opaque and assigned by
// the service.
type Record struct {
	RecordID string         `json:"record_id"`
	Fields   map[string]any `json:"fields"`
}

// RecordUpdate pairs a record ID with the field values to write.
type RecordUpdate struct {
	RecordID string         `json:"record_id"`
	Fields   map[string]any `json:"fields"`
}
