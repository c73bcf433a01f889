// Package urlcheck decides whether a target URL is safe to fetch.
//
// Validate is a pure function with no network access and no shared state.
// It is the server-side request forgery gate for the clone pipeline: the
// collector calls it before any request is issued, and the transport reuses
// IsPublicIP to refuse connections whose resolved address is internal.
//
// Hostnames that only resolve to internal addresses at DNS time cannot be
// detected here. The direct transport closes that gap at dial time; when a
// proxy is configured the proxy resolves names and the gap remains.
package urlcheck
