package handlers

// Common error message constants shared across handlers
const (
	ErrMsgInvalidRequestBody = "Invalid request body"
	ErrMsgUserIDNotFound     = "User ID not found"
	ErrMsgInvalidEngagementID = "Invalid engagement ID"
	ErrMsgInvalidClientID     = "Invalid client ID"
	ErrMsgInvalidSessionID    = "Invalid session ID"
)

// API path constants
const (
	AuthAPIBasePath = "/api/v1/auth"
)
