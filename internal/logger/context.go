package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey string

const tenantKey ctxKey = "tenant"

func WithTenant(ctx context.Context, tenant string) context.Context {
	return context.WithValue(ctx, tenantKey, tenant)
}

func TenantFrom(ctx context.Context) string {
	if v := ctx.Value(tenantKey); v != nil {
		return v.(string)
	}
	return ""
}

// FromCtx returns logger with the tenant automatically added
func FromCtx(ctx context.Context) *zap.Logger {
	tenant := TenantFrom(ctx)
	if tenant == "" {
		return L()
	}
	return L().With(zap.String("tenant", tenant))
}
