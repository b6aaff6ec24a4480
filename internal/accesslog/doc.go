// Package accesslog extracts (url, status) pairs from web-server access logs.
//
// A line is recognised when it contains a quoted request line followed by a
// three-digit status code:
//
//	127.0.0.1 - - [10/Oct/2024] "GET /malware.exe HTTP/1.1" 404
//
// Anything else is skipped without error. Combined and common log formats
// from nginx and Apache both match, as do custom formats that keep the
// quoted request and the status next to each other.
package accesslog
