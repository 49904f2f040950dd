package network

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRPCClientCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "testuser", user)
		assert.Equal(t, "testpass", pass)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "2.0", req.JSONRPC)
		assert.Equal(t, "eth_blockNumber", req.Method)
		assert.NotNil(t, req.Params)

		resp := rpcResponse{ID: req.ID, Result: json.RawMessage(`100`)}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewRPCClient(RPCConfig{URL: server.URL, User: "testuser", Password: "testpass"})
	var height int
	err := client.Call(context.Background(), "eth_blockNumber", nil, &height)
	require.NoError(t, err)
	assert.Equal(t, 100, height)
}

func TestRPCClientRPCError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		resp := rpcResponse{ID: req.ID, Error: &rpcError{Code: -32000, Message: "execution reverted"}}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewRPCClient(RPCConfig{URL: server.URL})
	err := client.Call(context.Background(), MethodTokenTransfer, nil, nil)
	require.ErrorIs(t, err, ErrRPC)
	assert.Contains(t, err.Error(), "execution reverted")
}

func TestRPCClientRPCErrorWithHTTPStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		resp := rpcResponse{Error: &rpcError{Code: -32601, Message: "method not found"}}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewRPCClient(RPCConfig{URL: server.URL})
	var result json.RawMessage
	err := client.Call(context.Background(), "token_mint", []interface{}{"x"}, &result)
	require.ErrorIs(t, err, ErrRPC)
	assert.Contains(t, err.Error(), "method not found")
}

func TestRPCClientHTTPErrorWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewRPCClient(RPCConfig{URL: server.URL})
	err := client.Call(context.Background(), "eth_blockNumber", nil, nil)
	require.ErrorIs(t, err, ErrConnectionFailed)
	assert.Contains(t, err.Error(), "502")
}

func TestRPCClientAuthFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewRPCClient(RPCConfig{URL: server.URL, User: "x", Password: "wrong"})
	err := client.Call(context.Background(), "eth_blockNumber", nil, nil)
	assert.ErrorIs(t, err, ErrAuthFailed)
}

func TestRPCClientConnectionError(t *testing.T) {
	client := NewRPCClient(RPCConfig{URL: "http://localhost:1"})
	var result int
	err := client.Call(context.Background(), "eth_blockNumber", nil, &result)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnectionFailed)
}

func TestRPCClientContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewRPCClient(RPCConfig{URL: server.URL})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var result int
	err := client.Call(ctx, "eth_blockNumber", nil, &result)
	require.Error(t, err)
}

func TestRPCClientSequentialIDs(t *testing.T) {
	var ids []int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		ids = append(ids, req.ID)
		resp := rpcResponse{ID: req.ID, Result: json.RawMessage(`0`)}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewRPCClient(RPCConfig{URL: server.URL})
	for i := 0; i < 3; i++ {
		var n int
		client.Call(context.Background(), "eth_blockNumber", nil, &n)
	}
	assert.Equal(t, []int64{1, 2, 3}, ids)
}

func TestRPCClientIDMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(rpcResponse{ID: 99, Result: json.RawMessage(`true`)})
	}))
	defer server.Close()

	client := NewRPCClient(RPCConfig{URL: server.URL})
	err := client.Call(context.Background(), MethodTokenApprove, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestRPCClientNilResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		resp := rpcResponse{ID: req.ID, Result: json.RawMessage(`true`)}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewRPCClient(RPCConfig{URL: server.URL})
	err := client.Call(context.Background(), MethodTokenTransfer, []interface{}{"x"}, nil)
	require.NoError(t, err)
}
