// Package database provides SQLite storage for art-vault.
//
// It handles storage and retrieval of:
//   - Scan folders and the assets discovered under them
//   - Tags, material sets (collections) and saved searches
//   - Settings such as the scanner's extension allow-list
//
// The database uses WAL mode so API reads proceed while the scanner writes.
// Every write runs in its own transaction; bulk operations are all-or-nothing.
package database
