package httpapi

import (
	"context"

	"github.com/seenimoa/bonosportal/pkg/models"
)

const authPath = "/api/v1/authentication"

// AuthAPI implements ports.AuthRepository.
type AuthAPI struct {
	c *Client
}

// NewAuthAPI creates the authentication adapter.
func NewAuthAPI(c *Client) *AuthAPI { return &AuthAPI{c: c} }

func (a *AuthAPI) SignIn(ctx context.Context, creds models.Credentials) (*models.Identity, error) {
	var id models.Identity
	if err := a.c.post(ctx, authPath+"/sign-in", creds, &id); err != nil {
		return nil, err
	}
	return &id, nil
}

func (a *AuthAPI) SignUp(ctx context.Context, data models.SignUpData) (*models.Identity, error) {
	var id models.Identity
	if err := a.c.post(ctx, authPath+"/sign-up", data, &id); err != nil {
		return nil, err
	}
	return &id, nil
}

// Profile fetches /me with whatever token the pipeline attaches.
func (a *AuthAPI) Profile(ctx context.Context) (*models.Identity, error) {
	var id models.Identity
	if err := a.c.get(ctx, authPath+"/me", nil, &id); err != nil {
		return nil, err
	}
	return &id, nil
}
