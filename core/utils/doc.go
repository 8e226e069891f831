// Package utils provides common utility functions for the sync service.
// It includes loose string rendering used when coercing scraped field
// values into the shapes the Bitable API expects.
package utils
