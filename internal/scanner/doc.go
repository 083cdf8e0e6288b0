// Package scanner runs the background indexing loop for art-vault.
//
// A single long-lived goroutine owns the loop. It wakes when the scan
// interval elapses or when a trigger is received, walks every active scan
// folder for files that are not yet in the library, extracts metadata for
// each one and records it as a new asset.
//
// Triggers are advisory: the trigger channel holds at most one pending
// request and drops any request that arrives while one is already queued.
// Folders and files are processed sequentially, and a failure on one file
// or one folder never aborts the iteration. Progress is published to any
// number of observers without backpressure on the scan.
package scanner
