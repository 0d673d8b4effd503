// Package history persists a local ledger of conversion runs.
//
// Every scan opens a run row; convert, download, and cleanup update it. The
// ledger is purely informational: losing it never affects an in-flight
// workflow.
package history
