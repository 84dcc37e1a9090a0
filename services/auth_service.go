package services

import (
	"context"
	"errors"
	"strings"

	"quizhub/apperrors"
	"quizhub/models"
	"quizhub/repository"

	"github.com/rs/zerolog"
)

type AuthService struct {
	store  repository.Store
	hasher PasswordHasher
	tokens *TokenService
	logger zerolog.Logger
}

func NewAuthService(store repository.Store, hasher PasswordHasher, tokens *TokenService, logger zerolog.Logger) *AuthService {
	return &AuthService{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		logger: logger.With().Str("service", "auth").Logger(),
	}
}

type AccessToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	return s.createUser(ctx, req, false)
}

func (s *AuthService) createUser(ctx context.Context, req RegisterRequest, superuser bool) (*models.User, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	user := &models.User{
		Email:          req.Email,
		Username:       req.Username,
		HashedPassword: hash,
		IsSuperuser:    superuser,
	}

	err = repository.Within(ctx, s.store, func(uow repository.UnitOfWork) error {
		_, err := uow.GetUserByUsername(ctx, req.Username)
		if err == nil {
			return apperrors.Conflict("The user with this username already exists")
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return uow.CreateUser(ctx, user)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperrors.Conflict("The user with this username already exists")
	}
	if err != nil {
		return nil, storeErr(err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Bool("superuser", superuser).Msg("user registered")
	return user, nil
}

// Login verifies credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AccessToken, error) {
	user, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Internal(err)
	}
	if user == nil || !s.hasher.Verify(password, user.HashedPassword) {
		return nil, apperrors.Auth("Incorrect username or password")
	}

	token, err := s.tokens.Issue(user.ID, 0)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &AccessToken{AccessToken: token, TokenType: "bearer"}, nil
}

// Authenticate resolves a bearer token to the current user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.tokens.Validate(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, msgUserNotFound)
	}
	return user, nil
}

// EnsureSuperuser creates the bootstrap superuser unless a user with that
// username already exists. It reports whether a user was created.
func (s *AuthService) EnsureSuperuser(ctx context.Context, username, email, password string) (bool, error) {
	req := RegisterRequest{
		Email:    strings.TrimSpace(email),
		Username: strings.TrimSpace(username),
		Password: password,
	}
	if err := validateStruct(req); err != nil {
		return false, err
	}
	_, err := s.createUser(ctx, req, true)
	if apperrors.Is(err, apperrors.KindConflict) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
