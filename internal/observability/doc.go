// Package observability builds the process logger and the HTTP access log.
//
// Both binaries log through zap. The gateway writes one access line per
// request, tagged with the chi request ID so it can be joined with the
// handler logs for the same request.
package observability
