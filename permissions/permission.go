// Package permissions names the role sets route gates are composed from.
package permissions

import (
	"slices"

	"natours/shared/constant"
)

var (
	Admin      = []string{constant.RoleAdmin}
	Staff      = []string{constant.RoleAdmin, constant.RoleLeadGuide}
	Guides     = []string{constant.RoleAdmin, constant.RoleLeadGuide, constant.RoleGuide}
	Reviewers  = []string{constant.RoleUser}
	ReviewEdit = []string{constant.RoleUser, constant.RoleAdmin}
)

// Allow reports whether role is one of allowed. An empty role is never allowed.
func Allow(role string, allowed ...string) bool {
	return role != "" && slices.Contains(allowed, role)
}
