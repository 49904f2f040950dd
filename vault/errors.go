package vault

import "errors"

var (
	// ErrUnauthorized indicates the caller lacks the owner or role the operation requires.
	ErrUnauthorized = errors.New("vault: unauthorized")

	// ErrUnknownOperator indicates a stake targeted an unregistered node operator.
	ErrUnknownOperator = errors.New("vault: unknown node operator")

	// ErrTransferFailed indicates the token collaborator rejected a transfer or approval.
	ErrTransferFailed = errors.New("vault: token transfer failed")

	// ErrStakingFailed indicates the staking collaborator rejected a stake.
	ErrStakingFailed = errors.New("vault: staking failed")

	// ErrDirectoryLookup indicates the storage directory could not resolve a contract.
	ErrDirectoryLookup = errors.New("vault: directory lookup failed")

	// ErrReentrantCall indicates a collaborator called back into the vault
	// while one of its operations was in flight.
	ErrReentrantCall = errors.New("vault: reentrant call")

	// ErrPersist indicates the store failed to commit an operation.
	ErrPersist = errors.New("vault: persist failed")

	// ErrMissingCollaborator indicates New was called without a required collaborator.
	ErrMissingCollaborator = errors.New("vault: missing collaborator")
)
