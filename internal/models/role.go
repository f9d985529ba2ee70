package models

import "sort"

// Role is an operator permission tier.
type Role string

const (
	RoleViewer Role = "viewer"
	RoleStaff  Role = "staff"
	RoleAdmin  Role = "admin"
)

var roleRank = map[Role]int{
	RoleViewer: 1,
	RoleStaff:  2,
	RoleAdmin:  3,
}

// IsValidRole reports whether role is a known tier.
func IsValidRole(role Role) bool {
	_, ok := roleRank[role]
	return ok
}

// IsValidRoleList reports whether roles is non-empty and only holds known tiers.
func IsValidRoleList(roles []Role) bool {
	if len(roles) == 0 {
		return false
	}
	for _, r := range roles {
		if !IsValidRole(r) {
			return false
		}
	}
	return true
}

// NormalizeRoles drops duplicates and orders roles from lowest to highest tier.
// Unknown roles are kept at the end so validation can still reject them.
func NormalizeRoles(roles []Role) []Role {
	seen := make(map[Role]struct{}, len(roles))
	out := make([]Role, 0, len(roles))
	for _, r := range roles {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, iok := roleRank[out[i]]
		rj, jok := roleRank[out[j]]
		if iok != jok {
			return iok
		}
		return ri < rj
	})
	return out
}

// EnsureDefaultRole guarantees every operator holds at least the viewer tier.
func EnsureDefaultRole(roles []Role) []Role {
	for _, r := range roles {
		if r == RoleViewer {
			return roles
		}
	}
	return NormalizeRoles(append([]Role{RoleViewer}, roles...))
}

// HighestRole returns the top tier in roles, or viewer when roles is empty.
func HighestRole(roles []Role) Role {
	highest := RoleViewer
	for _, r := range roles {
		if roleRank[r] > roleRank[highest] {
			highest = r
		}
	}
	return highest
}

// HasAtLeast reports whether any of roles reaches the required tier.
func HasAtLeast(roles []Role, required Role) bool {
	need, ok := roleRank[required]
	if !ok {
		return false
	}
	for _, r := range roles {
		if roleRank[r] >= need {
			return true
		}
	}
	return false
}
