// Package feishu provides the Bitable API client.
//
// It wraps the Feishu Open Platform HTTP API behind a Client interface so
// features can be tested against a mock. The client covers exactly the
// surface the sync engine needs: field listing and creation, paginated
// record search, batch create/update, and single-record delete.
//
// # Authentication
//
// Calls authenticate with a tenant access token fetched from the internal
// token endpoint and cached per app ID until shortly before expiry.
// Credentials are passed per call; the client holds no global credential
// state beyond that cache.
//
// # Rate limiting
//
// Write endpoints (field creation, record writes, deletes) pass through a
// client-side token-bucket limiter sized to the per-app write ceiling, so
// a large sync run throttles itself before the remote service rejects it.
//
// # Errors
//
// A non-zero envelope code or a non-200 status is returned as *APIError,
// which reports whether the failure is transient (429/5xx). The client
// never retries; retry policy belongs to callers.
package feishu
