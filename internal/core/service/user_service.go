package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/identitydesk/identity-api/internal/core/domain"
	"github.com/identitydesk/identity-api/internal/core/policy"
	"github.com/identitydesk/identity-api/internal/core/ports"
)

// ProfileCache abstracts the public-profile lookup cache (Redis).
type ProfileCache interface {
	Get(ctx context.Context, username string) (*domain.User, bool)
	Set(ctx context.Context, u *domain.User)
	Invalidate(ctx context.Context, username string)
}

// userService implements the identity lifecycle: it authorizes every
// operation first, enforces the uniqueness invariants, and delegates hashing
// and persistence to its collaborators.
type userService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	guard  uniquenessGuard
	cache  ProfileCache
	audit  ports.AuditRecorder
	log    zerolog.Logger
}

// NewUserService returns a ports.UserService implementation.
func NewUserService(
	repo ports.UserRepository,
	hasher ports.PasswordHasher,
	cache ProfileCache,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) ports.UserService {
	return &userService{
		repo:   repo,
		hasher: hasher,
		guard:  uniquenessGuard{repo: repo},
		cache:  cache,
		audit:  audit,
		log:    log,
	}
}

// authorize converts a policy denial into the boundary error. Denied callers
// stop here, before any store access.
func (s *userService) authorize(caller policy.Caller, op policy.Operation) error {
	if d := policy.Authorize(caller, op); !d.Allowed {
		s.log.Warn().
			Str("caller_id", caller.ID).
			Str("operation", op.String()).
			Str("reason", d.Reason).
			Msg("operation denied")
		return domain.ErrPermissionDenied
	}
	return nil
}

func (s *userService) record(caller policy.Caller, op policy.Operation, targetID string) {
	s.audit.Record(ports.AuditEvent{
		ActorID:   caller.ID,
		Operation: op.String(),
		TargetID:  targetID,
		Timestamp: time.Now().UTC(),
	})
}

func (s *userService) Create(ctx context.Context, caller policy.Caller, in ports.CreateUserInput) (*domain.User, error) {
	if err := s.authorize(caller, policy.OpCreate); err != nil {
		return nil, err
	}
	if !domain.ValidRole(in.Role) {
		return nil, domain.ErrInvalidRole
	}

	if err := s.guard.checkConflicts(ctx, in.Email, in.Username, ""); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:        in.Email,
		Username:     in.Username,
		FullName:     in.FullName,
		PasswordHash: hash,
		Role:         in.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Insert(ctx, user)
	if err != nil {
		// A race lost to a concurrent writer comes back from the unique
		// index as a ConflictError, same shape as the pre-check.
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user created")
	s.record(caller, policy.OpCreate, created.ID)
	return created, nil
}

func (s *userService) GetByID(ctx context.Context, caller policy.Caller, id string) (*domain.User, error) {
	if err := s.authorize(caller, policy.OpReadOne); err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, &domain.NotFoundError{}
		}
		return nil, err
	}
	return user, nil
}

// GetSelf resolves the target from the caller context; identity is already
// established, so no policy check applies.
func (s *userService) GetSelf(ctx context.Context, caller policy.Caller) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, &domain.NotFoundError{}
		}
		return nil, err
	}
	return user, nil
}

// GetByUsername requires no role beyond an authenticated caller, so it
// deliberately skips the policy engine. Matching is exact, byte for byte,
// which covers non-ASCII usernames.
func (s *userService) GetByUsername(ctx context.Context, _ policy.Caller, username string) (*domain.User, error) {
	if cached, ok := s.cache.Get(ctx, username); ok {
		return cached, nil
	}
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, &domain.NotFoundError{}
		}
		return nil, err
	}
	s.cache.Set(ctx, user)
	return user, nil
}

func (s *userService) List(ctx context.Context, caller policy.Caller) ([]*domain.User, error) {
	if err := s.authorize(caller, policy.OpReadMany); err != nil {
		return nil, err
	}
	return s.repo.FindAll(ctx)
}

// Search returns an empty result when no filter field is supplied or when
// any supplied field is empty: an empty filter signals no search intent, not
// an unfiltered listing.
func (s *userService) Search(ctx context.Context, caller policy.Caller, in ports.SearchInput) ([]*domain.User, error) {
	if err := s.authorize(caller, policy.OpSearch); err != nil {
		return nil, err
	}

	provided := 0
	for _, f := range []*string{in.Email, in.FullName, in.Username} {
		if f == nil {
			continue
		}
		if *f == "" {
			return []*domain.User{}, nil
		}
		provided++
	}
	if provided == 0 {
		return []*domain.User{}, nil
	}

	filter := ports.SearchFilter{}
	if in.Email != nil {
		filter.Email = *in.Email
	}
	if in.FullName != nil {
		filter.FullName = *in.FullName
	}
	if in.Username != nil {
		filter.Username = *in.Username
	}
	return s.repo.Search(ctx, filter)
}

func (s *userService) UpdateProfile(ctx context.Context, caller policy.Caller, id string, in ports.UpdateProfileInput) (*domain.User, error) {
	if err := s.authorize(caller, policy.OpUpdateProfile); err != nil {
		return nil, err
	}
	return s.applyProfileUpdate(ctx, caller, policy.OpUpdateProfile, id, in)
}

// UpdateOwnProfile resolves the target from the caller context, bypassing
// the admin-only by-id path.
func (s *userService) UpdateOwnProfile(ctx context.Context, caller policy.Caller, in ports.UpdateProfileInput) (*domain.User, error) {
	if err := s.authorize(caller, policy.OpUpdateOwnProfile); err != nil {
		return nil, err
	}
	return s.applyProfileUpdate(ctx, caller, policy.OpUpdateOwnProfile, caller.ID, in)
}

// applyProfileUpdate is shared by the by-id and self variants. It touches
// only profile fields; credential and role are left as stored.
func (s *userService) applyProfileUpdate(ctx context.Context, caller policy.Caller, op policy.Operation, id string, in ports.UpdateProfileInput) (*domain.User, error) {
	target, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, &domain.NotFoundError{Op: "update"}
		}
		return nil, err
	}

	var email, username string
	if in.Email != nil {
		email = *in.Email
	}
	if in.Username != nil {
		username = *in.Username
	}
	// excludeID = target id, so keeping the existing email/username is
	// never flagged as a conflict.
	if err := s.guard.checkConflicts(ctx, email, username, target.ID); err != nil {
		return nil, err
	}

	previousUsername := target.Username
	if in.Email != nil {
		target.Email = *in.Email
	}
	if in.Username != nil {
		target.Username = *in.Username
	}
	if in.FullName != nil {
		target.FullName = *in.FullName
	}
	target.UpdatedAt = time.Now().UTC()

	updated, err := s.repo.Update(ctx, target)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, previousUsername)
	s.log.Info().Str("user_id", updated.ID).Str("operation", op.String()).Msg("profile updated")
	s.record(caller, op, updated.ID)
	return updated, nil
}

func (s *userService) UpdateCredential(ctx context.Context, caller policy.Caller, id, newPassword string) error {
	if err := s.authorize(caller, policy.OpUpdateCredential); err != nil {
		return err
	}
	return s.replaceCredential(ctx, caller, policy.OpUpdateCredential, id, newPassword)
}

func (s *userService) UpdateOwnCredential(ctx context.Context, caller policy.Caller, currentPassword, newPassword string) error {
	if err := s.authorize(caller, policy.OpUpdateOwnCredential); err != nil {
		return err
	}

	target, err := s.repo.FindByID(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return &domain.NotFoundError{Op: "update"}
		}
		return err
	}
	if !s.hasher.Verify(currentPassword, target.PasswordHash) {
		return domain.ErrIncorrectPassword
	}

	return s.replaceCredential(ctx, caller, policy.OpUpdateOwnCredential, caller.ID, newPassword)
}

// replaceCredential swaps the stored hash as a whole. No other field is
// touched. If persistence fails after hashing, the error propagates and the
// stored credential is unchanged.
func (s *userService) replaceCredential(ctx context.Context, caller policy.Caller, op policy.Operation, id, newPassword string) error {
	target, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return &domain.NotFoundError{Op: "update"}
		}
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	target.PasswordHash = hash
	target.UpdatedAt = time.Now().UTC()
	if _, err := s.repo.Update(ctx, target); err != nil {
		return err
	}

	s.log.Info().Str("user_id", id).Str("operation", op.String()).Msg("credential updated")
	s.record(caller, op, id)
	return nil
}

func (s *userService) UpdateRole(ctx context.Context, caller policy.Caller, id, role string) (*domain.User, error) {
	if err := s.authorize(caller, policy.OpUpdateRole); err != nil {
		return nil, err
	}
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}

	target, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, &domain.NotFoundError{Op: "update"}
		}
		return nil, err
	}

	target.Role = role
	target.UpdatedAt = time.Now().UTC()
	updated, err := s.repo.Update(ctx, target)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", id).Str("role", role).Msg("role updated")
	s.record(caller, policy.OpUpdateRole, id)
	return updated, nil
}

func (s *userService) Delete(ctx context.Context, caller policy.Caller, id string) (*domain.User, error) {
	if err := s.authorize(caller, policy.OpDelete); err != nil {
		return nil, err
	}

	target, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, &domain.NotFoundError{Op: "delete"}
		}
		return nil, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, &domain.NotFoundError{Op: "delete"}
		}
		return nil, err
	}

	s.cache.Invalidate(ctx, target.Username)
	s.log.Info().Str("user_id", id).Msg("user deleted")
	s.record(caller, policy.OpDelete, id)
	return target, nil
}
