package directory

import "errors"

var (
	// ErrNotFound indicates no address is registered under the key.
	ErrNotFound = errors.New("directory: not found")

	// ErrInvalidRecord indicates a directory record does not hold a valid address.
	ErrInvalidRecord = errors.New("directory: invalid record")

	// ErrLookupFailed indicates the DNS query itself failed.
	ErrLookupFailed = errors.New("directory: lookup failed")

	// ErrDNSSECValidationFailed indicates the upstream resolver did not
	// authenticate the answer.
	ErrDNSSECValidationFailed = errors.New("directory: DNSSEC validation failed")
)
