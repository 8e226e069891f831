package catalog

import "fmt"

// ContentType identifies one Douban content category. The set is closed;
// every category maps to its own compiled field catalog.
type ContentType string

const (
	ContentTypeBooks       ContentType = "books"
	ContentTypeMovies      ContentType = "movies"
	ContentTypeTV          ContentType = "tv"
	ContentTypeDocumentary ContentType = "documentary"
)

// Parse validates a string as a ContentType.
func Parse(s string) (ContentType, error) {
	ct := ContentType(s)
	if _, ok := catalogs[ct]; !ok {
		return "", fmt.Errorf("unknown content type: %q", s)
	}
	return ct, nil
}

// All returns every known content type.
func All() []ContentType {
	return []ContentType{ContentTypeBooks, ContentTypeMovies, ContentTypeTV, ContentTypeDocumentary}
}

// Kind is the abstract data kind of a domain field. It determines the
// remote column type and the value normalization applied before writing.
type Kind string

const (
	KindText         Kind = "text"
	KindNumber       Kind = "number"
	KindRating       Kind = "rating"
	KindDate         Kind = "date"
	KindSingleSelect Kind = "singleSelect"
	KindURL          Kind = "url"
)

// Field is one entry in a content-type catalog.
type Field struct {
	// DomainName is the stable key of the field (e.g. "doubanRating").
	DomainName string
	// DisplayName is the column label matched or created on the remote table.
	DisplayName string
	// Kind determines the remote column type and value normalization.
	Kind Kind
	// Required marks fields whose absence from a mapping aborts a sync.
	Required bool
	// NestedPath is an optional dotted path into a nested source value
	// (e.g. "rating.average"). Empty means the value is read directly
	// from the record's value bag under DomainName.
	NestedPath string
	// Description documents the field for operators.
	Description string
}

// SubjectIDDomainName is the domain name of the join-key field present in
// every catalog. Its mapped column links scraped snapshots to remote rows.
const SubjectIDDomainName = "subjectId"

// Fields returns the compiled catalog for a content type, in the fixed
// order used for content hashing. The returned slice must not be mutated.
func Fields(ct ContentType) []Field {
	return catalogs[ct]
}

// RequiredFields returns the required subset of a catalog.
func RequiredFields(ct ContentType) []Field {
	var required []Field
	for _, f := range catalogs[ct] {
		if f.Required {
			required = append(required, f)
		}
	}
	return required
}
