package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/redmonkez12/user-location-api/internal/location"
	"github.com/redmonkez12/user-location-api/internal/logging"
)

// ValidationError aggregates every validation message for a record.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "user validation failed: " + strings.Join(e.Messages, "; ")
}

// LocationResolver resolves a zip code to coordinates and a timezone.
type LocationResolver interface {
	Resolve(ctx context.Context, zipCode string) (*location.Location, error)
}

// Service mediates between the HTTP layer, the user store and the
// location resolver. It owns the create/update reconciliation logic: the
// resolver is called only when a record gains a zip code or changes to a
// different one, and the three location fields always move together.
type Service struct {
	repo     Repository
	resolver LocationResolver
	logger   *logging.Logger
}

func NewService(repo Repository, resolver LocationResolver, logger *logging.Logger) *Service {
	return &Service{
		repo:     repo,
		resolver: resolver,
		logger:   logger,
	}
}

// GetAll returns every stored user. An empty store yields an empty slice,
// not an error.
func (s *Service) GetAll(ctx context.Context) ([]*User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	if users == nil {
		users = []*User{}
	}
	return users, nil
}

// GetByID returns the user at id, or nil when no such record exists.
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	if id == "" {
		return nil, ErrIDRequired
	}

	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// Create builds, validates and persists a new user. A provided zip code is
// geocoded first; resolver failures abort the create unchanged. A zip code
// that trims to empty is treated as not provided.
func (s *Service) Create(ctx context.Context, input CreateInput) (*User, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	zip := normalizeZip(input.ZipCode)

	var loc *location.Location
	if zip != nil {
		resolved, err := s.resolver.Resolve(ctx, *zip)
		if err != nil {
			return nil, err
		}
		loc = resolved
	}

	id, err := s.repo.GenerateID()
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:      id,
		Name:    name,
		ZipCode: zip,
	}
	applyLocation(u, loc)

	if result := u.Validate(); !result.Valid {
		return nil, &ValidationError{Messages: result.Errors}
	}

	if err := s.repo.Set(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user created", "user_id", u.ID, "has_location", loc != nil)
	return u, nil
}

// Update applies a patch to an existing user. The zip code transition
// decides whether the resolver runs:
//   - zip omitted, or supplied with the same trimmed value: nothing moves.
//   - zip supplied with a new non-empty value: resolve it and replace all
//     three location fields; a resolver failure aborts the whole update.
//   - zip supplied as null or a value that trims to empty: clear the zip
//     and all three location fields without calling the resolver.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (*User, error) {
	if id == "" {
		return nil, ErrIDRequired
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	updated := *existing

	if input.Name != nil {
		updated.Name = strings.TrimSpace(*input.Name)
	}

	if input.ZipCode.Set {
		newZip := normalizeZip(input.ZipCode.Value)

		if !zipEqual(newZip, existing.ZipCode) {
			if newZip != nil {
				loc, err := s.resolver.Resolve(ctx, *newZip)
				if err != nil {
					return nil, err
				}
				updated.ZipCode = newZip
				applyLocation(&updated, loc)
			} else {
				updated.ZipCode = nil
				applyLocation(&updated, nil)
			}
		}
	}

	if result := updated.Validate(); !result.Valid {
		return nil, &ValidationError{Messages: result.Errors}
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}

	s.logger.Info("user updated", "user_id", id)
	return &updated, nil
}

// Delete removes the user at id and reports whether a record existed.
// Deleting an absent id is not an error.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, ErrIDRequired
	}

	removed, err := s.repo.Remove(ctx, id)
	if err != nil {
		return false, err
	}

	if removed {
		s.logger.Info("user deleted", "user_id", id)
	}
	return removed, nil
}

// normalizeZip trims the zip code and maps empty to nil, so an empty
// string and an absent value mean the same thing everywhere.
func normalizeZip(zip *string) *string {
	if zip == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*zip)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func zipEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// applyLocation sets or clears the three location fields together.
func applyLocation(u *User, loc *location.Location) {
	if loc == nil {
		u.Latitude = nil
		u.Longitude = nil
		u.Timezone = nil
		return
	}

	lat := loc.Latitude
	lon := loc.Longitude
	tz := loc.Timezone
	u.Latitude = &lat
	u.Longitude = &lon
	u.Timezone = &tz
}
