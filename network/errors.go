package network

import "errors"

var (
	// ErrConnectionFailed indicates the client could not connect to the node.
	ErrConnectionFailed = errors.New("network: connection failed")

	// ErrAuthFailed indicates the node rejected the RPC credentials.
	ErrAuthFailed = errors.New("network: authentication failed")

	// ErrRPC indicates the node answered the call with a JSON-RPC error object.
	ErrRPC = errors.New("network: rpc error")

	// ErrInvalidResponse indicates the node returned a malformed or unexpected response.
	ErrInvalidResponse = errors.New("network: invalid response")
)

// ErrRejected indicates a contract call returned false instead of reverting.
var ErrRejected = errors.New("network: call rejected")
