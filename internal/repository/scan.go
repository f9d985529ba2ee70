package repository

import (
	"database/sql"
	"strings"

	"github.com/Mister-Mana/Invitopia-App-sub002/internal/models"
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func nullableString(s *string) interface{} {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return strings.TrimSpace(*s)
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func joinRoles(roles []models.Role) string {
	parts := make([]string, 0, len(roles))
	for _, r := range roles {
		parts = append(parts, string(r))
	}
	return strings.Join(parts, ",")
}

func splitRoles(raw string) []models.Role {
	var roles []models.Role
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			roles = append(roles, models.Role(part))
		}
	}
	return roles
}
