// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// Fetch requests may carry wikidot session cookies and custom headers from the
// configuration file. The SecureHandler masks those before they reach the log:
//   - HTTP headers (Authorization, Cookie, Set-Cookie, X-Api-Key)
//   - keys containing password, token, secret, session or cookie
//   - values that look like bearer tokens, JWTs or wikidot session cookies
//
// # Usage
//
//	level, err := log.ParseLevel("debug")
//	if err != nil {
//	    return err
//	}
//	logger, err := log.New(os.Stderr, log.Options{Level: level, Format: log.FormatText})
//	if err != nil {
//	    return err
//	}
//	logger.Info("fetching", "url", u, "cookie", c) // cookie=***REDACTED***
package log
