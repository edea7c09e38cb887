package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/user-location-api/internal/database"
)

var (
	ErrIDRequired   = errors.New("user ID is required")
	ErrNameRequired = errors.New("name is required")
	ErrNotFound     = errors.New("user not found")
)

// Repository abstracts the key-value tree the user records live in. The
// original deployment used a realtime document database addressed by
// "users/<id>" paths; any backend that can list, read, write and remove
// records by id and mint creation-ordered ids can satisfy it.
type Repository interface {
	// List returns every stored record, order unspecified.
	List(ctx context.Context) ([]*User, error)
	// Get returns (nil, nil) when no record exists at id.
	Get(ctx context.Context, id string) (*User, error)
	// Set writes the full record at its id.
	Set(ctx context.Context, u *User) error
	// Update merge-writes every record field at the existing id and
	// returns ErrNotFound when no record exists there.
	Update(ctx context.Context, u *User) error
	// Remove deletes the record and reports whether one existed.
	Remove(ctx context.Context, id string) (bool, error)
	// GenerateID mints a fresh unique id, sortable by creation time.
	GenerateID() (string, error)
}

// generateID returns a UUIDv7 string. UUIDv7 is time-ordered, so ids sort
// by creation time like the push keys of the original store.
func generateID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate user id: %w", err)
	}
	return id.String(), nil
}

// PostgresRepository persists user records in the users table via bun.
type PostgresRepository struct {
	db *bun.DB
}

func NewPostgresRepository(db *bun.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]*User, error) {
	var dbUsers []database.User
	err := r.db.NewSelect().
		Model(&dbUsers).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*User, 0, len(dbUsers))
	for i := range dbUsers {
		users = append(users, mapDBUserToModel(&dbUsers[i]))
	}
	return users, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

func (r *PostgresRepository) Set(ctx context.Context, u *User) error {
	dbUser := mapModelToDBUser(u)

	_, err := r.db.NewInsert().
		Model(dbUser).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("zip_code = EXCLUDED.zip_code").
		Set("latitude = EXCLUDED.latitude").
		Set("longitude = EXCLUDED.longitude").
		Set("timezone = EXCLUDED.timezone").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to store user: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, u *User) error {
	dbUser := mapModelToDBUser(u)

	result, err := r.db.NewUpdate().
		Model(dbUser).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) Remove(ctx context.Context, id string) (bool, error) {
	result, err := r.db.NewDelete().
		Model((*database.User)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *PostgresRepository) GenerateID() (string, error) {
	return generateID()
}

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:        dbu.ID,
		Name:      dbu.Name,
		ZipCode:   dbu.ZipCode,
		Latitude:  dbu.Latitude,
		Longitude: dbu.Longitude,
		Timezone:  dbu.Timezone,
	}
}

func mapModelToDBUser(u *User) *database.User {
	return &database.User{
		ID:        u.ID,
		Name:      u.Name,
		ZipCode:   u.ZipCode,
		Latitude:  u.Latitude,
		Longitude: u.Longitude,
		Timezone:  u.Timezone,
	}
}
