// Package server exposes the clone pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz     liveness check, always 200 {"status":"ok"}
//	POST /api/clone   body {"url": "https://example.com/"}
//
// A successful clone answers 200 with the zip archive as the body
// (Content-Type application/zip, Content-Disposition naming
// "<domain>.zip"). Failures answer a JSON body {"error": code,
// "message": text} with a status derived from the error type:
//
//	400 invalid_request    malformed body or missing url
//	400 invalid_url        the target failed validation
//	413 request_too_large  body over 8 KiB
//	422 parse_failed       the root document could not be parsed
//	422 archive_empty      nothing to archive
//	429 rate_limited       the limiter refused the request
//	502 fetch_failed       the root document could not be fetched
//	504 archive_timeout    archive construction hit its deadline
//	504 timeout            the request as a whole hit its deadline
//	500 internal_error     anything else
package server
