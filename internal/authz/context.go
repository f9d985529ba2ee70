package authz

import (
	"context"
	"net/http"

	"github.com/Mister-Mana/Invitopia-App-sub002/internal/models"
)

type contextKey string

const (
	operatorIDKey    contextKey = "operator_id"
	operatorRolesKey contextKey = "operator_roles"
)

// WithIdentity stores the authenticated operator and their roles on the context.
func WithIdentity(ctx context.Context, operatorID string, roles []models.Role) context.Context {
	if operatorID != "" {
		ctx = context.WithValue(ctx, operatorIDKey, operatorID)
	}
	normalized := models.EnsureDefaultRole(models.NormalizeRoles(roles))
	return context.WithValue(ctx, operatorRolesKey, normalized)
}

func OperatorIDFromRequest(r *http.Request) (string, bool) {
	return OperatorIDFromContext(r.Context())
}

func OperatorIDFromContext(ctx context.Context) (string, bool) {
	oid, ok := ctx.Value(operatorIDKey).(string)
	if !ok || oid == "" {
		return "", false
	}
	return oid, true
}

func RolesFromRequest(r *http.Request) ([]models.Role, bool) {
	roles, ok := r.Context().Value(operatorRolesKey).([]models.Role)
	if !ok || !models.IsValidRoleList(roles) {
		return nil, false
	}
	return roles, true
}
