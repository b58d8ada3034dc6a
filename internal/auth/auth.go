// Package auth covers account registration, login and session tokens.
// Passwords are stored as bcrypt hashes; sessions are signed HS256 JWTs
// carried in a cookie or an Authorization header.
package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"

	"finanze/internal/core"
	"finanze/internal/records"
)

const (
	// SessionCookie is the browser session cookie name.
	SessionCookie = "finanze_session"

	tokenTTL = 24 * time.Hour

	minPasswordLen = 8
	maxPasswordLen = 72 // bcrypt input limit
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrBadUsername        = errors.New("username must be 3-64 characters: lowercase letters, digits, underscore")
	ErrBadPassword        = fmt.Errorf("password must be %d-%d characters", minPasswordLen, maxPasswordLen)
)

var usernameRe = regexp.MustCompile(`^[a-z0-9_]{3,64}$`)

type Service struct {
	users      records.UserStore
	secret     []byte
	bcryptCost int
}

func NewService(users records.UserStore, secret []byte, bcryptCost int) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		users:      users,
		secret:     secret,
		bcryptCost: bcryptCost,
	}
}

// Register creates an account and returns it. The username is normalized
// to what was given; no case folding happens here because the pattern
// already rejects uppercase.
func (s *Service) Register(ctx context.Context, username, password string) (core.User, error) {
	if !usernameRe.MatchString(username) {
		return core.User{}, ErrBadUsername
	}
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return core.User{}, ErrBadPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := core.User{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, records.ErrUserExists) {
			return core.User{}, ErrUsernameTaken
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Login checks the credentials and returns a fresh session token. Missing
// user and wrong password collapse into the same error so the response
// does not leak which usernames exist.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.users.FindUser(ctx, username)
	if err != nil {
		if errors.Is(err, records.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.IssueToken(username)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}
