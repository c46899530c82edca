package rpc

import (
	"errors"
	"fmt"
)

var (
	// ErrSocketNotFound indicates the IPC socket path does not exist.
	ErrSocketNotFound = errors.New("rpc: socket not found")
	// ErrConnectionRefused indicates the socket exists but nothing is listening.
	ErrConnectionRefused = errors.New("rpc: connection refused")
	// ErrConnectionClosed indicates the connection went away while a call was
	// outstanding, or the client was closed.
	ErrConnectionClosed = errors.New("rpc: connection closed")
	// ErrTimeout indicates no response arrived within the per-call deadline.
	ErrTimeout = errors.New("rpc: request timed out")
	// ErrClientClosed indicates a call was issued against a closed client.
	ErrClientClosed = errors.New("rpc: client closed")
)

// Error is a JSON-RPC error object returned by the node for a single call.
// It affects only the call that triggered it.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// DecodeError indicates a response result did not match the shape expected
// for the method invoked.
type DecodeError struct {
	Method string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("rpc: decode %s result: %v", e.Method, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
