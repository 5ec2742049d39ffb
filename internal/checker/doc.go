// Package checker wires header acquisition and scoring into runnable checks.
//
//   - HeaderChecker implements Checker: it normalizes a target, resolves its
//     response headers through a HeaderResolver and scores them against a
//     scoring.Catalog.
//   - Runner executes a Checker over many targets with a bounded worker pool
//     and a global rate limit, invoking an AuditFunc per target.
//   - ParseTarget and NormalizeTarget turn user input ("example.com",
//     "localhost:8080") into absolute http(s) URLs and reject other schemes.
//
// cmd/ and the API server both go through this package so a CLI run and a
// REST request produce identical CheckResult payloads.
package checker
