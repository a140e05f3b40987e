// Package api serves the capture, search and item routes over HTTP.
//
// Every route under /api except /api/health requires an X-User-ID header
// carrying the caller's numeric user id. Errors are returned as
//
//	{"error": {"message": "...", "type": "..."}}
package api
