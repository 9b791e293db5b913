// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package guard

import (
	"errors"
	"testing"

	"github.com/olegiv/oins-go/internal/store"
)

var (
	adminUser   = &store.User{ID: "admin-1", IsAdmin: true}
	regularUser = &store.User{ID: "user-1"}
)

func TestRequireAuthenticated(t *testing.T) {
	if err := RequireAuthenticated(nil); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("nil principal: got %v, want ErrUnauthenticated", err)
	}
	if err := RequireAuthenticated(regularUser); err != nil {
		t.Errorf("regular user: got %v, want nil", err)
	}
	if err := RequireAuthenticated(adminUser); err != nil {
		t.Errorf("admin: got %v, want nil", err)
	}
}

func TestRequireAdmin(t *testing.T) {
	if err := RequireAdmin(nil); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("nil principal: got %v, want ErrUnauthenticated", err)
	}
	if err := RequireAdmin(regularUser); !errors.Is(err, ErrForbidden) {
		t.Errorf("regular user: got %v, want ErrForbidden", err)
	}
	if err := RequireAdmin(adminUser); err != nil {
		t.Errorf("admin: got %v, want nil", err)
	}
}

func TestRequireNonAdmin(t *testing.T) {
	if err := RequireNonAdmin(nil); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("nil principal: got %v, want ErrUnauthenticated", err)
	}
	if err := RequireNonAdmin(adminUser); !errors.Is(err, ErrForbidden) {
		t.Errorf("admin: got %v, want ErrForbidden", err)
	}
	if err := RequireNonAdmin(regularUser); err != nil {
		t.Errorf("regular user: got %v, want nil", err)
	}
}

func TestRequireSelfOrAdmin(t *testing.T) {
	tests := []struct {
		name    string
		user    *store.User
		ownerID string
		want    error
	}{
		{"anonymous", nil, "user-1", ErrUnauthenticated},
		{"owner", regularUser, "user-1", nil},
		{"other user", regularUser, "user-2", ErrForbidden},
		{"admin over any owner", adminUser, "user-2", nil},
		{"admin over own", adminUser, "admin-1", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireSelfOrAdmin(tt.user, tt.ownerID)
			if !errors.Is(err, tt.want) && !(err == nil && tt.want == nil) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}
