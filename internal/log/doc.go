// Package log builds the slog logger used by logtriage.
//
// Access logs are full of query strings, and query strings are full of
// session ids and API tokens. RedactingHandler wraps any slog.Handler and
// masks:
//   - attributes whose key names a secret (token, password, cookie, ...)
//   - string values that look like credentials (JWTs, bearer tokens)
//   - secret query parameters and userinfo inside URL-valued attributes
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Debug("alert", "url", "/login?token=abc&next=/")
//	// url=/login?token=***REDACTED***&next=/
package log
