package client

import (
	"context"
	"net/http"
	"net/url"

	"diary-backend/internal/domains/user/model"
)

// =====================================================
// AUTHENTICATION
// =====================================================

func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (Session, *model.AuthResponse, error) {
	return c.authenticate(ctx, "/register", req)
}

// Login exchanges credentials for a Session.
func (c *Client) Login(ctx context.Context, email, password string) (Session, *model.AuthResponse, error) {
	return c.authenticate(ctx, "/login", model.LoginRequest{Email: email, Password: password})
}

func (c *Client) authenticate(ctx context.Context, path string, req interface{}) (Session, *model.AuthResponse, error) {
	var out model.AuthResponse
	if _, err := c.call(ctx, Session{}, http.MethodPost, path, req, &out); err != nil {
		return Session{}, nil, err
	}
	return Session{Token: out.Token, UserID: out.User.ID}, &out, nil
}

// Logout revokes the session's token on the server.
func (c *Client) Logout(ctx context.Context, s Session) error {
	_, err := c.call(ctx, s, http.MethodPost, "/logout", nil, nil)
	return err
}

func (c *Client) Me(ctx context.Context, s Session) (*model.UserResponse, error) {
	var out struct {
		User model.UserResponse `json:"user"`
	}
	if _, err := c.call(ctx, s, http.MethodGet, "/user", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// =====================================================
// PROFILE
// =====================================================

func (c *Client) Profile(ctx context.Context, s Session) (*model.ProfileResponse, error) {
	var out model.ProfileResponse
	if _, err := c.call(ctx, s, http.MethodGet, "/user/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile returns an *APIError with DaysRemaining set while the
// edit cooldown is running.
func (c *Client) UpdateProfile(ctx context.Context, s Session, req model.UpdateProfileRequest) (*model.UserResponse, error) {
	var out model.UserResponse
	if _, err := c.call(ctx, s, http.MethodPut, "/user/profile", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchUsers runs an explore search.
func (c *Client) SearchUsers(ctx context.Context, s Session, query string) ([]model.SearchUserResponse, error) {
	var out struct {
		Users []model.SearchUserResponse `json:"users"`
	}
	path := "/explore/search?" + url.Values{"query": {query}}.Encode()
	if _, err := c.call(ctx, s, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}
