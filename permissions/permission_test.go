package permissions_test

import (
	"testing"

	"natours/permissions"

	"github.com/stretchr/testify/assert"
)

func TestAllow(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		allowed []string
		want    bool
	}{
		{name: "admin among staff", role: "admin", allowed: permissions.Staff, want: true},
		{name: "lead guide among staff", role: "lead-guide", allowed: permissions.Staff, want: true},
		{name: "guide not staff", role: "guide", allowed: permissions.Staff},
		{name: "guide plans tours", role: "guide", allowed: permissions.Guides, want: true},
		{name: "admin cannot write reviews", role: "admin", allowed: permissions.Reviewers},
		{name: "admin edits reviews", role: "admin", allowed: permissions.ReviewEdit, want: true},
		{name: "empty role", role: "", allowed: []string{""}},
		{name: "nothing allowed", role: "user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, permissions.Allow(tt.role, tt.allowed...))
		})
	}
}
