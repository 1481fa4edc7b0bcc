// Package profile reads and saves the user's profile row (display name and
// company name) through the gateway.
package profile

import (
	"context"
	"strings"

	"caixamei/internal/core"
	"caixamei/internal/gateway"
	"caixamei/internal/log"
)

type Manager struct {
	auth     gateway.Auth
	profiles gateway.Profiles
	logger   *log.Logger
}

func NewManager(auth gateway.Auth, profiles gateway.Profiles, logger *log.Logger) *Manager {
	return &Manager{
		auth:     auth,
		profiles: profiles,
		logger:   logger.WithComponent(log.ComponentProfile),
	}
}

// Load fetches the signed-in user's profile. A missing row is not an error:
// the zero profile comes back with the user id filled in.
func (m *Manager) Load(ctx context.Context) (core.Profile, error) {
	userID, ok := m.auth.CurrentUserID(ctx)
	if !ok {
		return core.Profile{}, gateway.ErrNotAuthenticated
	}
	p, found, err := m.profiles.Get(ctx, userID)
	if err != nil {
		m.logger.Error("profile load failed", log.FieldOperation, log.OpFetch, log.FieldError, err)
		return core.Profile{}, err
	}
	if !found {
		return core.Profile{UserID: userID}, nil
	}
	return p, nil
}

// Save upserts the profile row for the signed-in user.
func (m *Manager) Save(ctx context.Context, fullName, companyName string) error {
	userID, ok := m.auth.CurrentUserID(ctx)
	if !ok {
		return gateway.ErrNotAuthenticated
	}
	err := m.profiles.Upsert(ctx, core.Profile{
		UserID:      userID,
		FullName:    fullName,
		CompanyName: companyName,
	})
	if err != nil {
		m.logger.Error("profile save failed", log.FieldOperation, log.OpUpsert, log.FieldError, err)
		return err
	}
	return nil
}

// FirstName extracts the first name for the dashboard greeting.
func FirstName(p core.Profile) string {
	name := strings.TrimSpace(p.FullName)
	if name == "" {
		return ""
	}
	return strings.Fields(name)[0]
}
