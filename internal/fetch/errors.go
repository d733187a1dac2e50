package fetch

import "errors"

var (
	// ErrInvalidProxyAddress is returned when the proxy address is not in
	// "host:port" format.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrInvalidPage is returned when a page reference is not "site:page".
	ErrInvalidPage = errors.New("invalid page reference: expected site:page")

	// ErrUnexpectedStatus is returned for non-2xx responses.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrNoSource is returned when an HTML page carries no wiki source.
	ErrNoSource = errors.New("no page source found")
)
