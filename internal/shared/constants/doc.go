// Package constants centralizes configuration defaults shared across the CLI.
//
// Timeouts, display limits and header-block caps live here so cmd/, the API
// server and the header resolver agree on the same values without importing
// each other.
package constants
