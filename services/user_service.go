package services

import (
	"context"

	"quizhub/apperrors"
	"quizhub/authz"
	"quizhub/models"
	"quizhub/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type UserService struct {
	store  repository.Store
	hasher PasswordHasher
	tokens *TokenService
	logger zerolog.Logger
}

func NewUserService(store repository.Store, hasher PasswordHasher, tokens *TokenService, logger zerolog.Logger) *UserService {
	return &UserService{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		logger: logger.With().Str("service", "users").Logger(),
	}
}

func (s *UserService) Get(ctx context.Context, p authz.Principal, id uuid.UUID) (*models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, lookupErr(err, msgUserNotFound)
	}
	if err := authz.Check(p, user, authz.Read); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes a user and everything they own. Superuser accounts are
// never deleted.
func (s *UserService) Delete(ctx context.Context, p authz.Principal, id uuid.UUID) error {
	err := repository.Within(ctx, s.store, func(uow repository.UnitOfWork) error {
		user, err := uow.GetUser(ctx, id)
		if err != nil {
			return lookupErr(err, msgUserNotFound)
		}
		if err := authz.Check(p, user, authz.Delete); err != nil {
			return err
		}
		return uow.DeleteUser(ctx, id)
	})
	if err != nil {
		return storeErr(err)
	}

	s.revokeTokens(ctx, id)
	s.logger.Info().Str("user_id", id.String()).Str("actor_id", p.ID.String()).Msg("user deleted")
	return nil
}

// UpdatePassword replaces the password of user id. Users changing their own
// password must confirm the current one.
func (s *UserService) UpdatePassword(ctx context.Context, p authz.Principal, id uuid.UUID, req UpdatePasswordRequest) (*models.User, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if req.CurrentPassword == req.NewPassword {
		return nil, apperrors.Validation("New password cannot be the same as the current one")
	}

	var updated *models.User
	err := repository.Within(ctx, s.store, func(uow repository.UnitOfWork) error {
		user, err := uow.GetUser(ctx, id)
		if err != nil {
			return lookupErr(err, msgUserNotFound)
		}
		if err := authz.Check(p, user, authz.Update); err != nil {
			return err
		}
		if p.ID == user.ID && !s.hasher.Verify(req.CurrentPassword, user.HashedPassword) {
			return apperrors.Validation("Incorrect password")
		}
		hash, err := s.hasher.Hash(req.NewPassword)
		if err != nil {
			return err
		}
		if err := uow.UpdateUserPassword(ctx, id, hash); err != nil {
			return err
		}
		updated, err = uow.GetUser(ctx, id)
		return err
	})
	if err != nil {
		return nil, storeErr(err)
	}

	s.revokeTokens(ctx, id)
	return updated, nil
}

func (s *UserService) revokeTokens(ctx context.Context, id uuid.UUID) {
	if err := s.tokens.RevokeAll(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("user_id", id.String()).Msg("revoke tokens failed")
	}
}
