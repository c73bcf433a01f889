// Package main provides the entry point for the siteclone CLI.
//
// siteclone fetches a web page together with its same-origin stylesheets,
// scripts, images and fonts and packages them into a zip archive that
// mirrors the site's URL layout.
//
// Usage:
//
//	siteclone clone https://example.com/
//	siteclone serve --listen 127.0.0.1:8080
//	siteclone history example.com
//
// See --help for all available options.
package main

func main() {
	Execute()
}
