package controller

import (
	"context"

	"github.com/sharetube/multiview/internal/repository/connection"
)

type contextKey int

const (
	sessionIdCtxKey contextKey = iota
	clientIdCtxKey
	clientCtxKey
)

func (c controller) getSessionIdFromCtx(ctx context.Context) string {
	sessionId, ok := ctx.Value(sessionIdCtxKey).(string)
	if !ok {
		return ""
	}

	return sessionId
}

func (c controller) getClientIdFromCtx(ctx context.Context) string {
	clientId, ok := ctx.Value(clientIdCtxKey).(string)
	if !ok {
		return ""
	}

	return clientId
}

func (c controller) getClientFromCtx(ctx context.Context) *connection.Client {
	client, ok := ctx.Value(clientCtxKey).(*connection.Client)
	if !ok {
		return nil
	}

	return client
}
