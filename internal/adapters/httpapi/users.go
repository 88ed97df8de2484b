package httpapi

import (
	"context"
	"fmt"

	"github.com/seenimoa/bonosportal/pkg/models"
)

// UsersAPI implements the user, role and profile management ports.
type UsersAPI struct {
	c *Client
}

// NewUsersAPI creates the user-management adapter.
func NewUsersAPI(c *Client) *UsersAPI { return &UsersAPI{c: c} }

func (a *UsersAPI) Users(ctx context.Context) ([]models.UserResource, error) {
	var users []models.UserResource
	if err := a.c.get(ctx, "/api/v1/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (a *UsersAPI) User(ctx context.Context, id int64) (*models.UserResource, error) {
	var u models.UserResource
	if err := a.c.get(ctx, bondPath("/api/v1/users", id), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (a *UsersAPI) Roles(ctx context.Context) ([]models.RoleResource, error) {
	var roles []models.RoleResource
	if err := a.c.get(ctx, rolesPath, nil, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

func (a *UsersAPI) Profiles(ctx context.Context) ([]models.ProfileResource, error) {
	var profiles []models.ProfileResource
	if err := a.c.get(ctx, "/api/v1/profiles", nil, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (a *UsersAPI) Profile(ctx context.Context, id int64) (*models.ProfileResource, error) {
	var p models.ProfileResource
	if err := a.c.get(ctx, bondPath("/api/v1/profiles", id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (a *UsersAPI) CreateProfile(ctx context.Context, req models.CreateProfileRequest) (*models.ProfileResource, error) {
	var p models.ProfileResource
	if err := a.c.post(ctx, "/api/v1/profiles", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (a *UsersAPI) AssignProfile(ctx context.Context, userID int64, req models.CreateProfileRequest) (*models.ProfileResource, error) {
	var p models.ProfileResource
	if err := a.c.post(ctx, fmt.Sprintf("/api/v1/profiles/assign/%d", userID), req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
