package storage

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/stakevault/libstakevault-go/ledger"
	"github.com/stakevault/libstakevault-go/rewards"
)

// State record versions.
const (
	// stateV1 held idle, staked and cap; the target APR was a constant.
	stateV1 byte = 1
	// stateV2 adds the target APR.
	stateV2 byte = 2

	currentStateVersion = stateV2
)

const (
	wordSize    = 32
	stateV1Size = 1 + 3*wordSize // version(1) + idle(32) + staked(32) + cap(32)
	stateV2Size = 1 + 4*wordSize // stateV1 + target_apr(32)
)

// encodeState writes st as a current-version record.
func encodeState(st ledger.VaultState) []byte {
	buf := make([]byte, stateV2Size)
	buf[0] = currentStateVersion
	st.IdleBalance.PutUint256(buf[1:33])
	st.StakedTotal.PutUint256(buf[33:65])
	st.Cap.PutUint256(buf[65:97])
	st.TargetAPR.PutUint256(buf[97:129])
	return buf
}

// decodeState reads a record of any supported version. migrated reports
// whether the record was older than the current version.
func decodeState(data []byte) (st ledger.VaultState, migrated bool, err error) {
	if len(data) == 0 {
		return st, false, fmt.Errorf("%w: empty record", ErrCorruptState)
	}
	switch data[0] {
	case stateV1:
		if len(data) != stateV1Size {
			return st, false, fmt.Errorf("%w: v1 record is %d bytes", ErrCorruptState, len(data))
		}
		return migrateV1(data), true, nil
	case stateV2:
		if len(data) != stateV2Size {
			return st, false, fmt.Errorf("%w: v2 record is %d bytes", ErrCorruptState, len(data))
		}
		st.IdleBalance.SetBytes32(data[1:33])
		st.StakedTotal.SetBytes32(data[33:65])
		st.Cap.SetBytes32(data[65:97])
		st.TargetAPR.SetBytes32(data[97:129])
		if st.TargetAPR.GtUint64(rewards.MaxAPR) {
			return st, false, fmt.Errorf("%w: target APR %s", ErrCorruptState, &st.TargetAPR)
		}
		return st, false, nil
	default:
		return st, false, fmt.Errorf("%w: %d", ErrUnsupportedVersion, data[0])
	}
}

// migrateV1 upgrades a v1 record, which predates a configurable APR, by
// assigning the default target APR.
func migrateV1(data []byte) ledger.VaultState {
	var st ledger.VaultState
	st.IdleBalance.SetBytes32(data[1:33])
	st.StakedTotal.SetBytes32(data[33:65])
	st.Cap.SetBytes32(data[65:97])
	st.TargetAPR.Set(uint256.NewInt(rewards.DefaultTargetAPR))
	return st
}
