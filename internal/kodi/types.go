package kodi

import (
	"encoding/json"
	"fmt"
)

// Request is a JSON-RPC call without its envelope.
type Request struct {
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

type envelope struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
	ID      uint64 `json:"id"`
}

type response struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcErrorBody   `json:"error"`
}

type rpcErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    *struct {
		Method string `json:"method"`
		Stack  *struct {
			Message string `json:"message"`
		} `json:"stack"`
	} `json:"data"`
}

// RPCError is an error object returned by Kodi in place of a result.
type RPCError struct {
	Code    int
	Message string
	// Method and Detail are filled from the optional error data block.
	Method string
	Detail string
}

func (e *RPCError) Error() string {
	if e.Method != "" && e.Detail != "" {
		return fmt.Sprintf("kodi rpc error %d: [%s]: %s", e.Code, e.Method, e.Detail)
	}
	return fmt.Sprintf("kodi rpc error %d: %s", e.Code, e.Message)
}

func (b *rpcErrorBody) toError() *RPCError {
	e := &RPCError{Code: b.Code, Message: b.Message}
	if b.Data != nil {
		e.Method = b.Data.Method
		if b.Data.Stack != nil {
			e.Detail = b.Data.Stack.Message
		}
	}
	return e
}

// Notification is a toast shown in the Kodi GUI.
type Notification struct {
	Title       string `json:"title"`
	Message     string `json:"message"`
	DisplayTime int    `json:"displaytime,omitempty"`
}
