package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/models"
)

type authUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone"`
	UserMetadata map[string]any `json:"user_metadata"`
}

func (u authUser) toUser() models.User {
	user := models.User{ID: u.ID, Email: u.Email, Phone: u.Phone}
	if name, ok := u.UserMetadata["full_name"].(string); ok {
		user.FullName = name
	}
	if avatar, ok := u.UserMetadata["avatar_url"].(string); ok {
		user.AvatarURL = avatar
	}
	return user
}

type tokenResponse struct {
	AccessToken  string   `json:"access_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int64    `json:"expires_in"`
	ExpiresAt    int64    `json:"expires_at"`
	RefreshToken string   `json:"refresh_token"`
	User         authUser `json:"user"`
}

func (t tokenResponse) toSession(now time.Time) *models.Session {
	expiresAt := time.Time{}
	switch {
	case t.ExpiresAt > 0:
		expiresAt = time.Unix(t.ExpiresAt, 0)
	case t.ExpiresIn > 0:
		expiresAt = now.Add(time.Duration(t.ExpiresIn) * time.Second)
	}
	return &models.Session{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		ExpiresAt:    expiresAt,
		User:         t.User.toUser(),
	}
}

// SignInWithPassword exchanges email and password for a session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	var resp tokenResponse
	err := c.do(ctx, request{
		operation: "auth.sign_in",
		method:    http.MethodPost,
		path:      "/auth/v1/token",
		query:     "grant_type=password",
		body:      map[string]string{"email": email, "password": password},
		bearer:    c.anonKey,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.toSession(time.Now()), nil
}

// RefreshSession trades a refresh token for a fresh session.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*models.Session, error) {
	var resp tokenResponse
	err := c.do(ctx, request{
		operation: "auth.refresh",
		method:    http.MethodPost,
		path:      "/auth/v1/token",
		query:     "grant_type=refresh_token",
		body:      map[string]string{"refresh_token": refreshToken},
		bearer:    c.anonKey,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.toSession(time.Now()), nil
}

// SignUpResult holds the created user. Session is nil when the backend
// requires email confirmation before the first login.
type SignUpResult struct {
	User    models.User
	Session *models.Session
}

type signUpResponse struct {
	tokenResponse
	authUser
}

// SignUp registers a user; metadata (full_name, role) is stored on the auth
// user and copied into the users table by the backend.
func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]string) (*SignUpResult, error) {
	var resp signUpResponse
	err := c.do(ctx, request{
		operation: "auth.sign_up",
		method:    http.MethodPost,
		path:      "/auth/v1/signup",
		body: map[string]any{
			"email":    email,
			"password": password,
			"data":     metadata,
		},
		bearer: c.anonKey,
	}, &resp)
	if err != nil {
		return nil, err
	}

	if resp.AccessToken != "" {
		session := resp.toSession(time.Now())
		return &SignUpResult{User: session.User, Session: session}, nil
	}
	return &SignUpResult{User: resp.authUser.toUser()}, nil
}

// GetUser returns the user behind an access token, validating it server side.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*models.User, error) {
	var resp authUser
	err := c.do(ctx, request{
		operation: "auth.get_user",
		method:    http.MethodGet,
		path:      "/auth/v1/user",
		bearer:    accessToken,
	}, &resp)
	if err != nil {
		return nil, err
	}
	user := resp.toUser()
	return &user, nil
}

// SignOut revokes the session behind the access token.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, request{
		operation: "auth.sign_out",
		method:    http.MethodPost,
		path:      "/auth/v1/logout",
		bearer:    accessToken,
	}, nil)
}
