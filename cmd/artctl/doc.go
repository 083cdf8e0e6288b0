// Command artctl runs library maintenance tasks against the Art Vault
// database without starting the server.
//
// Usage:
//
//	artctl <command> [args]
//
// Commands:
//
//	scan              Scan every active folder once and print a summary.
//	                  Exits non-zero if the scan could not complete.
//
//	status            Print library totals, the last scan time and the
//	                  registered scan folders.
//
//	add-folder <path> Register an existing directory for scanning.
//
// Configuration is read exactly as the server reads it (CONFIG_FILE and
// environment variables such as DATABASE_DIR and THUMBNAIL_DIR). Running a
// scan while the server is also scanning the same database is safe: each
// path is indexed at most once.
package main
