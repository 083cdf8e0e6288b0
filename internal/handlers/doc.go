// Package handlers provides the HTTP API for art-vault.
//
// It includes handlers for:
//   - Scan control: trigger, status and a Server-Sent Events progress stream
//   - Scan folders and the extension allow-list
//   - Asset browsing, filtering, facets, editing and soft deletion
//   - Bulk tag, delete and restore operations
//   - Tags, collections (material sets) and saved searches
//   - Thumbnails, health checks and version information
//
// Database sentinel errors are mapped to HTTP status codes in one place,
// writeDBError, and every error body is JSON of the form {"error": "..."}.
package handlers
