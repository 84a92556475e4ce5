package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Saatvik786/TaskSphere/internal/domain"
	"github.com/Saatvik786/TaskSphere/internal/helper"
	"github.com/Saatvik786/TaskSphere/internal/log"
	"github.com/Saatvik786/TaskSphere/internal/repo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Store is the slice of the credential store the auth core needs. Lookups return
// (nil, nil) when nothing matches; writes report unique index hits as repo.ErrDuplicate.
type Store interface {
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUserByExternalID(ctx context.Context, externalID string) (*domain.User, error)
	FindUserByID(ctx context.Context, id string) (*domain.User, error)
	CreateUser(ctx context.Context, u *domain.User) error
	LinkExternalID(ctx context.Context, id primitive.ObjectID, provider, externalID string) (*domain.User, error)
}

type TokenIssuer interface {
	Issue(uid string) (string, time.Time, error)
}

type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

// ExternalIdentity is an assertion already verified by the provider exchange.
type ExternalIdentity struct {
	Provider      string
	ExternalID    string
	Email         string
	EmailVerified bool
	DisplayName   string
}

// Outcome tells how an external identity was resolved.
type Outcome string

const (
	OutcomeExisting Outcome = "existing"
	OutcomeLinked   Outcome = "linked"
	OutcomeCreated  Outcome = "created"
)

type Result struct {
	Token     string
	ExpiresAt time.Time
	User      domain.Profile
	Outcome   Outcome
}

const defaultResolveAttempts = 3

// bcrypt only reads the first 72 bytes and refuses to hash anything longer.
const maxPasswordBytes = 72

type Service struct {
	store  Store
	tokens TokenIssuer
	hasher PasswordHasher

	// ResolveAttempts bounds the retries after a unique index conflict during resolution.
	ResolveAttempts int

	dummyOnce sync.Once
	dummyHash string
}

func NewService(store Store, tokens TokenIssuer, hasher PasswordHasher) *Service {
	return &Service{store: store, tokens: tokens, hasher: hasher, ResolveAttempts: defaultResolveAttempts}
}

func upstream(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrUpstreamUnavailable, op, err)
}

func (s *Service) issue(u *domain.User) (*Result, error) {
	tok, exp, err := s.tokens.Issue(u.ID.Hex())
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Result{Token: tok, ExpiresAt: exp, User: u.Profile()}, nil
}

func (s *Service) Register(ctx context.Context, name, email, password string) (*Result, error) {
	name = strings.TrimSpace(name)
	email = domain.NormalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, domain.ErrMissingFields
	}
	if len(password) > maxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", domain.ErrInvalidInput, maxPasswordBytes)
	}

	existing, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, upstream("find user", err)
	}
	if existing != nil {
		return nil, domain.ErrDuplicateAccount
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{Email: email, Name: name, PasswordHash: hash, Provider: domain.ProviderLocal}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, domain.ErrDuplicateAccount
		}
		return nil, upstream("create user", err)
	}
	return s.issue(u)
}

func (s *Service) Login(ctx context.Context, email, password string) (*Result, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrMissingFields
	}

	u, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, upstream("find user", err)
	}
	if u == nil {
		// keep unknown emails as slow as wrong passwords
		s.hasher.Verify(s.dummy(), password)
		return nil, domain.ErrInvalidCredentials
	}
	if !u.HasPassword() {
		return nil, domain.ErrUseExternalLogin
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}
	return s.issue(u)
}

func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("tasksphere-dummy-password")
	})
	return s.dummyHash
}

// ResolveExternal maps a provider identity to a local user: by external id, else by email
// (linking it), else by creating one. A unique index conflict means a concurrent request
// won the write, so resolution starts over.
func (s *Service) ResolveExternal(ctx context.Context, id ExternalIdentity) (*domain.User, Outcome, error) {
	id.ExternalID = strings.TrimSpace(id.ExternalID)
	id.Email = domain.NormalizeEmail(id.Email)
	if id.ExternalID == "" || id.Email == "" {
		return nil, "", domain.ErrProviderAssertionInvalid
	}
	if id.Provider == "" {
		id.Provider = domain.ProviderGoogle
	}

	attempts := s.ResolveAttempts
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		u, err := s.store.FindUserByExternalID(ctx, id.ExternalID)
		if err != nil {
			return nil, "", upstream("find by external id", err)
		}
		if u != nil {
			return u, OutcomeExisting, nil
		}

		u, err = s.store.FindUserByEmail(ctx, id.Email)
		if err != nil {
			return nil, "", upstream("find by email", err)
		}
		if u != nil {
			linked, err := s.store.LinkExternalID(ctx, u.ID, id.Provider, id.ExternalID)
			switch {
			case err == nil:
				return linked, OutcomeLinked, nil
			case errors.Is(err, repo.ErrDuplicate), errors.Is(err, repo.ErrNotFound):
				s.logRetry(id, i, "link")
				continue
			default:
				return nil, "", upstream("link external id", err)
			}
		}

		nu := &domain.User{
			Email:      id.Email,
			Name:       displayName(id),
			Provider:   id.Provider,
			ExternalID: id.ExternalID,
		}
		err = s.store.CreateUser(ctx, nu)
		switch {
		case err == nil:
			return nu, OutcomeCreated, nil
		case errors.Is(err, repo.ErrDuplicate):
			s.logRetry(id, i, "create")
			continue
		default:
			return nil, "", upstream("create user", err)
		}
	}
	return nil, "", fmt.Errorf("%w: account resolution did not converge after %d attempts",
		domain.ErrUpstreamUnavailable, attempts)
}

func (s *Service) logRetry(id ExternalIdentity, attempt int, step string) {
	log.L().Debug("account resolution conflict, retrying",
		zap.String("provider", id.Provider),
		zap.String("email_hash", helper.Hash8(id.Email)),
		zap.String("step", step),
		zap.Int("attempt", attempt+1),
	)
}

func displayName(id ExternalIdentity) string {
	if n := strings.TrimSpace(id.DisplayName); n != "" {
		return n
	}
	local, _, _ := strings.Cut(id.Email, "@")
	return local
}

// ExternalCallback resolves the identity and issues a token for it.
func (s *Service) ExternalCallback(ctx context.Context, id ExternalIdentity) (*Result, error) {
	u, outcome, err := s.ResolveExternal(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	res.Outcome = outcome
	return res, nil
}

// Me returns the profile behind uid. A user removed after the token was issued is ErrNotFound.
func (s *Service) Me(ctx context.Context, uid string) (domain.Profile, error) {
	u, err := s.store.FindUserByID(ctx, uid)
	if err != nil {
		return domain.Profile{}, upstream("find user", err)
	}
	if u == nil {
		return domain.Profile{}, domain.ErrNotFound
	}
	return u.Profile(), nil
}
