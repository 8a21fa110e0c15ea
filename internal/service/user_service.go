package service

import (
	"context"
	"errors"
	"fmt"

	"taskManager/internal/logger"
	"taskManager/internal/models/user"
	"taskManager/internal/repository"

	"go.uber.org/zap"
)

// Unknown usernames are verified against this pair so signin costs one KDF
// run whether or not the user exists.
const (
	missingUserSalt   = "bWlzc2luZy11c2VyLXNhbHQ"
	missingUserDigest = "bWlzc2luZy11c2VyLWRpZ2VzdA"
)

type UserService struct {
	repo   UserRepository
	hasher PasswordHasher
	tokens TokenManager
}

func NewUserService(repo UserRepository, hasher PasswordHasher, tokens TokenManager) *UserService {
	return &UserService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
	}
}

// Credentials is the validated username/password pair of signup and signin.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignUp stores a new user with a fresh salt and the derived digest.
func (s *UserService) SignUp(ctx context.Context, creds Credentials) (*user.User, error) {
	salt, err := s.hasher.NewSalt()
	if err != nil {
		logger.Error("Service: failed to generate salt", err, zap.String("username", creds.Username))
		return nil, NewInternal(err)
	}

	u := &user.User{
		Username:     creds.Username,
		Salt:         salt,
		PasswordHash: s.hasher.Hash(creds.Password, salt),
	}

	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			logger.Info("Service: username already taken", zap.String("username", creds.Username))
			return nil, NewConflict("username already exists", ToDetail("username", creds.Username))
		}
		logger.Error("Service: failed to create user", err, zap.String("username", creds.Username))
		return nil, NewInternal(fmt.Errorf("create user: %w", err))
	}

	logger.Info("Service: user signed up", zap.Int64("user_id", u.ID), zap.String("username", u.Username))
	return u, nil
}

// ValidateCredentials returns the username and true only for an existing
// user with the right password. Unknown users and wrong passwords both
// return "", false.
func (s *UserService) ValidateCredentials(ctx context.Context, creds Credentials) (string, bool, error) {
	u, err := s.repo.GetUserByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.Verify(creds.Password, missingUserSalt, missingUserDigest)
			return "", false, nil
		}
		logger.Error("Service: failed to load user", err, zap.String("username", creds.Username))
		return "", false, NewInternal(fmt.Errorf("load user: %w", err))
	}

	if !s.hasher.Verify(creds.Password, u.Salt, u.PasswordHash) {
		return "", false, nil
	}
	return u.Username, true, nil
}

// SignIn returns a signed access token for valid credentials.
func (s *UserService) SignIn(ctx context.Context, creds Credentials) (string, error) {
	username, ok, err := s.ValidateCredentials(ctx, creds)
	if err != nil {
		return "", err
	}
	if !ok {
		logger.Info("Service: invalid credentials", zap.String("username", creds.Username))
		return "", NewUnauthorized("invalid credentials")
	}

	token, err := s.tokens.Issue(username)
	if err != nil {
		logger.Error("Service: failed to issue token", err, zap.String("username", username))
		return "", NewInternal(err)
	}

	logger.Info("Service: user signed in", zap.String("username", username))
	return token, nil
}

// Authenticate verifies token and reloads its user. A valid token whose
// user no longer exists is rejected.
func (s *UserService) Authenticate(ctx context.Context, token string) (*user.User, error) {
	if token == "" {
		return nil, NewUnauthorized("missing access token")
	}

	username, err := s.tokens.Verify(token)
	if err != nil {
		logger.Info("Service: token rejected", zap.Error(err))
		return nil, NewUnauthorized("invalid or expired access token")
	}

	u, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Info("Service: token owner not found", zap.String("username", username))
			return nil, NewUnauthorized("invalid or expired access token")
		}
		logger.Error("Service: failed to load token owner", err, zap.String("username", username))
		return nil, NewInternal(fmt.Errorf("load user: %w", err))
	}
	return u, nil
}
