package api

import (
	"context"

	"github.com/terra-clan/backoffice/internal/models"
)

type contextKey string

const adminContextKey contextKey = "admin"

// AdminFromContext extracts the signed-in operator from context
func AdminFromContext(ctx context.Context) *models.Admin {
	admin, ok := ctx.Value(adminContextKey).(*models.Admin)
	if !ok {
		return nil
	}
	return admin
}

// ContextWithAdmin adds the signed-in operator to context
func ContextWithAdmin(ctx context.Context, admin *models.Admin) context.Context {
	return context.WithValue(ctx, adminContextKey, admin)
}
