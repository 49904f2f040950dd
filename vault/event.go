package vault

import (
	"time"

	"github.com/holiman/uint256"

	"github.com/stakevault/libstakevault-go/ledger"
)

// EventKind names a vault operation.
type EventKind string

const (
	EventDeposit            EventKind = "deposit"
	EventMint               EventKind = "mint"
	EventWithdraw           EventKind = "withdraw"
	EventRedeem             EventKind = "redeem"
	EventStake              EventKind = "stake"
	EventAccrue             EventKind = "accrue"
	EventStakeAndAccrue     EventKind = "stake_and_accrue"
	EventDepositFromStaking EventKind = "deposit_from_staking"
	EventSetCap             EventKind = "set_cap"
	EventSetTargetAPR       EventKind = "set_target_apr"
	EventTransfer           EventKind = "transfer"
	EventApprove            EventKind = "approve"
)

// Event is the audit record of one successful state change. Fields that do
// not apply to Kind are left zero.
type Event struct {
	Seq      uint64         `json:"seq"`
	Time     time.Time      `json:"time"`
	Kind     EventKind      `json:"kind"`
	Caller   ledger.Address `json:"caller"`
	Receiver ledger.Address `json:"receiver"`
	Owner    ledger.Address `json:"owner"`
	Operator ledger.Address `json:"operator"`
	Amount   *uint256.Int   `json:"amount,omitempty"`
	Shares   *uint256.Int   `json:"shares,omitempty"`
	Reward   *uint256.Int   `json:"reward,omitempty"`
}
