package ledger

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func populatedShares(t *testing.T) *ShareLedger {
	t.Helper()
	s := NewShareLedger()
	require.NoError(t, s.mint(bob, u(300)))
	require.NoError(t, s.mint(alice, u(700)))
	require.NoError(t, s.approve(alice, carol, u(25)))
	require.NoError(t, s.approve(bob, alice, maxUint256))
	return s
}

func TestSerializeShares_Layout(t *testing.T) {
	data, err := SerializeShares(populatedShares(t))
	require.NoError(t, err)
	assert.Len(t, data, sharesHeaderSize+2*shareEntrySize+allowanceCountSize+2*allowanceEntrySize)

	assert.Equal(t, byte(0x03), data[30])
	assert.Equal(t, byte(0xE8), data[31])
	assert.Equal(t, uint32(2), binary.BigEndian.Uint32(data[32:36]))

	// Entries are ordered by address: alice (0xA1..) before bob (0xB0..).
	assert.Equal(t, alice[:], data[36:56])
	assert.Equal(t, bob[:], data[36+shareEntrySize:56+shareEntrySize])
}

func TestDeserializeShares_RoundTrip(t *testing.T) {
	orig := populatedShares(t)
	data, err := SerializeShares(orig)
	require.NoError(t, err)

	got, err := DeserializeShares(data)
	require.NoError(t, err)
	assert.Equal(t, orig.Entries(), got.Entries())
	assert.Equal(t, orig.Allowances(), got.Allowances())
	assert.True(t, got.TotalShares().Eq(u(1000)))
	assert.True(t, got.Allowance(bob, alice).Eq(maxUint256))
}

func TestDeserializeShares_Empty(t *testing.T) {
	data, err := SerializeShares(NewShareLedger())
	require.NoError(t, err)
	assert.Len(t, data, sharesHeaderSize+allowanceCountSize)

	got, err := DeserializeShares(data)
	require.NoError(t, err)
	assert.True(t, got.TotalShares().IsZero())
	assert.Zero(t, got.Holders())
}

func TestDeserializeShares_Errors(t *testing.T) {
	valid, err := SerializeShares(populatedShares(t))
	require.NoError(t, err)

	badTotal := append([]byte(nil), valid...)
	badTotal[31]++

	dup := append([]byte(nil), valid...)
	copy(dup[36+shareEntrySize:], alice[:])

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"nil", nil, ErrInvalidShareData},
		{"short header", valid[:10], ErrInvalidShareData},
		{"truncated entries", valid[:sharesHeaderSize+shareEntrySize], ErrInvalidShareData},
		{"truncated allowances", valid[:len(valid)-1], ErrInvalidShareData},
		{"trailing bytes", append(append([]byte(nil), valid...), 0), ErrInvalidShareData},
		{"duplicate holder", dup, ErrInvalidShareData},
		{"total mismatch", badTotal, ErrShareConservationViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DeserializeShares(tt.data)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Address
		wantErr bool
	}{
		{"prefixed", "0xa1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1", alice, false},
		{"bare upper", "B0B0B0B0B0B0B0B0B0B0B0B0B0B0B0B0B0B0B0B0", bob, false},
		{"zero", "0x0000000000000000000000000000000000000000", ZeroAddress, false},
		{"short", "0xa1a1", Address{}, true},
		{"not hex", "0xzza1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1", Address{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAddress(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAddress)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddress_TextRoundTrip(t *testing.T) {
	text, err := carol.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "0xc4c4c4c4c4c4c4c4c4c4c4c4c4c4c4c4c4c4c4c4", string(text))

	var a Address
	require.NoError(t, a.UnmarshalText(text))
	assert.Equal(t, carol, a)
	assert.True(t, ZeroAddress.IsZero())
	assert.False(t, a.IsZero())
}
