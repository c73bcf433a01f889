// Package document turns raw markup into a queryable structure and extracts
// the reference URLs a page depends on.
//
// The collector only needs two capabilities from a parsed page: select
// elements with a CSS selector and read an attribute or the text of each
// match. Queryable captures exactly that, and Document implements it on top
// of goquery, which in turn uses golang.org/x/net/html. Any other
// standards-compliant parser can satisfy the interface.
//
// Stylesheet scanning (url(...) and @import) works on plain text and is
// shared by the first pass (inline <style> blocks and style attributes) and
// the second pass over downloaded stylesheets.
package document
