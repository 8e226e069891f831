// Package models defines the data types shared across the sync feature:
// scraped domain records, field mappings, change sets, run summaries, and
// the soft sync-state record.
package models
