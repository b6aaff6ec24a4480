// Package main provides the entry point for the logtriage CLI.
//
// logtriage reads a web-server access log and an HTML threat feed, and
// writes a URL/status listing, a CSV of 404 counts, the requests that hit
// blacklisted domains, and a summary.
//
// Usage:
//
//	logtriage
//	logtriage --log /var/log/nginx/access.log --feed feed.html
//
// See --help for all available options.
package main

func main() {
	Execute()
}
