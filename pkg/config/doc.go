// Package config loads and validates the declared landing zone
// configuration. The YAML document is decoded strictly into typed structs
// and validated totally before any reconciliation logic runs; a field that
// is missing or mis-typed fails the whole load rather than surfacing later
// as a lazy read.
package config
