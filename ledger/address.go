package ledger

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// AddressLength is the size of an account identity in bytes.
const AddressLength = 20

// Address identifies an account: a depositor, share holder, node operator,
// or one of the vault's collaborators.
type Address [AddressLength]byte

// ZeroAddress is the unset address.
var ZeroAddress Address

// ParseAddress decodes a 0x-prefixed (or bare) 40-character hex string.
func ParseAddress(s string) (Address, error) {
	var a Address
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != 2*AddressLength {
		return a, fmt.Errorf("%w: expected %d hex chars, got %d", ErrInvalidAddress, 2*AddressLength, len(s))
	}
	if _, err := hex.Decode(a[:], []byte(s)); err != nil {
		return a, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return a, nil
}

// MustParseAddress is ParseAddress for constants and tests; it panics on error.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// IsZero reports whether a is the zero address.
func (a Address) IsZero() bool { return a == ZeroAddress }

// Hex returns the 0x-prefixed lowercase hex encoding.
func (a Address) Hex() string { return "0x" + hex.EncodeToString(a[:]) }

// String implements fmt.Stringer.
func (a Address) String() string { return a.Hex() }

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) { return []byte(a.Hex()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
