package ledger

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/holiman/uint256"
)

const (
	amountSize         = 32
	sharesHeaderSize   = amountSize + 4               // total_shares(32) + num_entries(4)
	shareEntrySize     = AddressLength + amountSize   // address(20) + balance(32)
	allowanceCountSize = 4                            // num_allowances(4)
	allowanceEntrySize = 2*AddressLength + amountSize // owner(20) + spender(20) + amount(32)
)

// SerializeShares encodes the share ledger in a fixed-width big-endian layout:
// header, balance entries ordered by address, then allowance entries.
func SerializeShares(s *ShareLedger) ([]byte, error) {
	entries := s.Entries()
	allowances := s.Allowances()
	if len(entries) > math.MaxUint32 || len(allowances) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: too many entries", ErrInvalidShareData)
	}
	size := sharesHeaderSize + shareEntrySize*len(entries) +
		allowanceCountSize + allowanceEntrySize*len(allowances)
	buf := make([]byte, size)
	offset := 0

	s.total.PutUint256(buf[offset : offset+amountSize])
	offset += amountSize
	binary.BigEndian.PutUint32(buf[offset:offset+4], uint32(len(entries)))
	offset += 4

	for _, e := range entries {
		copy(buf[offset:offset+AddressLength], e.Address[:])
		offset += AddressLength
		e.Balance.PutUint256(buf[offset : offset+amountSize])
		offset += amountSize
	}

	binary.BigEndian.PutUint32(buf[offset:offset+4], uint32(len(allowances)))
	offset += 4
	for _, a := range allowances {
		copy(buf[offset:offset+AddressLength], a.Owner[:])
		offset += AddressLength
		copy(buf[offset:offset+AddressLength], a.Spender[:])
		offset += AddressLength
		a.Amount.PutUint256(buf[offset : offset+amountSize])
		offset += amountSize
	}
	return buf, nil
}

// DeserializeShares decodes data produced by SerializeShares and verifies
// share conservation.
func DeserializeShares(data []byte) (*ShareLedger, error) {
	if len(data) < sharesHeaderSize+allowanceCountSize {
		return nil, fmt.Errorf("%w: too short (%d bytes)", ErrInvalidShareData, len(data))
	}
	s := NewShareLedger()
	offset := 0

	s.total.SetBytes32(data[offset : offset+amountSize])
	offset += amountSize
	numEntries := int(binary.BigEndian.Uint32(data[offset : offset+4]))
	offset += 4

	if len(data)-offset < shareEntrySize*numEntries+allowanceCountSize {
		return nil, fmt.Errorf("%w: truncated balances for %d entries", ErrInvalidShareData, numEntries)
	}
	for i := 0; i < numEntries; i++ {
		var addr Address
		copy(addr[:], data[offset:offset+AddressLength])
		offset += AddressLength
		bal := new(uint256.Int).SetBytes32(data[offset : offset+amountSize])
		offset += amountSize
		if _, dup := s.balances[addr]; dup {
			return nil, fmt.Errorf("%w: duplicate holder %s", ErrInvalidShareData, addr)
		}
		s.setBalance(addr, bal)
	}

	numAllowances := int(binary.BigEndian.Uint32(data[offset : offset+4]))
	offset += 4
	if len(data)-offset != allowanceEntrySize*numAllowances {
		return nil, fmt.Errorf("%w: expected %d allowance bytes, got %d",
			ErrInvalidShareData, allowanceEntrySize*numAllowances, len(data)-offset)
	}
	for i := 0; i < numAllowances; i++ {
		var k allowanceKey
		copy(k.owner[:], data[offset:offset+AddressLength])
		offset += AddressLength
		copy(k.spender[:], data[offset:offset+AddressLength])
		offset += AddressLength
		amt := new(uint256.Int).SetBytes32(data[offset : offset+amountSize])
		offset += amountSize
		if !amt.IsZero() {
			s.allowances[k] = *amt
		}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
