package models

import (
	"errors"
	"time"
)

// Response status constants
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Domain errors. Controllers map these to HTTP status codes with errors.Is.
var (
	ErrNotFound    = errors.New("not found")
	ErrBadRequest  = errors.New("bad request")
	ErrRateLimited = errors.New("rate limited")
)

// BaseRequest represents common request fields
type BaseRequest struct {
	SessionID string    `json:"session_id,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// BaseResponse represents common response fields
type BaseResponse struct {
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Metadata represents generic metadata
type Metadata map[string]interface{}
