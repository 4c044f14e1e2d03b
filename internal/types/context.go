package types

import (
	"context"
)

// ContextKey is a type for the keys of values stored in the context
type ContextKey string

const (
	CtxRequestID   ContextKey = "ctx_request_id"
	CtxAccountName ContextKey = "ctx_account_name"
	CtxUserID      ContextKey = "ctx_user_id"
)

const (
	// HeaderRequestID is the request id response header
	HeaderRequestID = "X-Request-ID"
)

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(CtxRequestID).(string); ok {
		return requestID
	}
	return ""
}

func GetAccountName(ctx context.Context) string {
	if account, ok := ctx.Value(CtxAccountName).(string); ok {
		return account
	}
	return ""
}

func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(CtxUserID).(string); ok {
		return userID
	}
	return ""
}

// SetRequestID sets the request ID in the context
func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, CtxRequestID, requestID)
}

// SetAccountName sets the account name in the context
func SetAccountName(ctx context.Context, account string) context.Context {
	return context.WithValue(ctx, CtxAccountName, account)
}
