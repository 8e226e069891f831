// Package history keeps the durable record of finished sync runs.
package history
