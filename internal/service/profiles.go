package service

import (
	"context"
	"strings"

	"github.com/adhilsalahh/package-booking/internal/domain"
)

func (e *Engine) GetProfile(ctx context.Context, actor domain.Actor) (*domain.Profile, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	p, err := e.profiles.GetProfile(ctx, actor.ID)
	if err != nil {
		return nil, storageErr("get profile", err)
	}
	return p, nil
}

// UpdateProfile stores the caller's username and phone. The role always
// comes from the identity provider.
func (e *Engine) UpdateProfile(ctx context.Context, actor domain.Actor, username, phone string) (*domain.Profile, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.Invalid("username", "required")
	}
	role := actor.Role
	if role == "" {
		role = domain.RoleUser
	}
	p, err := e.profiles.UpsertProfile(ctx, domain.Profile{
		ID:       actor.ID,
		Username: username,
		Phone:    strings.TrimSpace(phone),
		Role:     role,
	})
	if err != nil {
		return nil, storageErr("save profile", err)
	}
	return p, nil
}
