// Package identity implements account registration, login and account
// lifecycle for the identity service. It is the only writer of the
// identities collection, and the only publisher on the identity-events
// topic.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sokocrafts/sokoni/internal/claims"
	"github.com/sokocrafts/sokoni/internal/eventbus"
	"github.com/sokocrafts/sokoni/internal/store"
)

var (
	// ErrEmailTaken is returned by Register for an already-used email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned by Login for an unknown email
	// or a wrong password; the two cases are deliberately
	// indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Service is the identity service's application core.
type Service struct {
	store    store.IdentityStore
	events   *eventbus.IdentityEventBus
	codec    *claims.Codec
	tokenTTL time.Duration
	logger   *slog.Logger
}

func NewService(
	identityStore store.IdentityStore,
	events *eventbus.IdentityEventBus,
	codec *claims.Codec,
	tokenTTL time.Duration,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:    identityStore,
		events:   events,
		codec:    codec,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// RegisterParams carries a registration request.
type RegisterParams struct {
	Name     string
	Email    string
	Password string
	Role     claims.Role
	Avatar   string
}

// AuthResult is an account together with a freshly issued token.
type AuthResult struct {
	Identity store.Identity
	Token    string
}

// Register creates a new account and returns it with a signed token.
// The IDENTITY_CREATED event is published only after the account has
// been durably saved; a publish failure at that point is logged and the
// registration still succeeds.
func (s *Service) Register(ctx context.Context, p RegisterParams) (*AuthResult, error) {
	s.logger.Info("Registering account", slog.String("email", p.Email))

	taken, err := s.store.ExistsByEmail(ctx, p.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	identity := store.Identity{
		ID:           uuid.NewString(),
		Name:         p.Name,
		Email:        p.Email,
		PasswordHash: string(hash),
		Role:         p.Role,
		Avatar:       p.Avatar,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Save(ctx, &identity); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.logger.Info("Account registered", slog.String("user_id", identity.ID))

	// Publish after commit. The account is already durable, so a
	// broker failure here only widens the consistency window.
	if err := s.events.PublishIdentityCreated(ctx, identity.ID, identity.Email, string(identity.Role)); err != nil {
		s.logger.Error("Failed to publish identity created event",
			slog.String("user_id", identity.ID),
			slog.Any("error", err),
		)
	}

	token, err := s.codec.Issue(identity.ID, identity.Role, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &AuthResult{Identity: identity, Token: token}, nil
}

// Login verifies credentials and returns the account with a fresh
// token.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	s.logger.Info("Login attempt", slog.String("email", email))

	identity, err := s.store.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.codec.Issue(identity.ID, identity.Role, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("Login successful", slog.String("user_id", identity.ID))
	return &AuthResult{Identity: *identity, Token: token}, nil
}

// Get returns the account for id, or store.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*store.Identity, error) {
	return s.store.FindByID(ctx, id)
}

// UpdateParams carries the mutable account fields; nil means keep the
// current value.
type UpdateParams struct {
	Name   *string
	Avatar *string
}

// Update applies the given fields to an existing account.
func (s *Service) Update(ctx context.Context, id string, p UpdateParams) (*store.Identity, error) {
	identity, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.Name != nil {
		identity.Name = *p.Name
	}
	if p.Avatar != nil {
		identity.Avatar = *p.Avatar
	}
	identity.UpdatedAt = time.Now().UTC()

	if err := s.store.Save(ctx, identity); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	s.logger.Info("Account updated", slog.String("user_id", identity.ID))
	return identity, nil
}

// Delete removes the account and publishes IDENTITY_DELETED so the
// downstream services cascade. A direct delete of a missing account is
// store.ErrNotFound; only the asynchronous cascades treat absence as
// success.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.store.FindByID(ctx, id); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	s.logger.Info("Account deleted", slog.String("user_id", id))

	if err := s.events.PublishIdentityDeleted(ctx, id); err != nil {
		s.logger.Error("Failed to publish identity deleted event",
			slog.String("user_id", id),
			slog.Any("error", err),
		)
	}
	return nil
}
