package user

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisRepository persists user records as one hash per user plus an id
// set for listing. Null fields are simply absent from the hash.
type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

const userIDsKey = "users:ids"

// getUserKey generates the Redis key for a user record
func getUserKey(id string) string {
	return fmt.Sprintf("users:%s", id)
}

func (r *RedisRepository) List(ctx context.Context) ([]*User, error) {
	ids, err := r.client.SMembers(ctx, userIDsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list user ids: %w", err)
	}

	users := make([]*User, 0, len(ids))
	for _, id := range ids {
		u, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if u == nil {
			// id set and hash can drift if a removal is interrupted
			continue
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *RedisRepository) Get(ctx context.Context, id string) (*User, error) {
	data, err := r.client.HGetAll(ctx, getUserKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	return hashToUser(id, data)
}

func (r *RedisRepository) Set(ctx context.Context, u *User) error {
	userKey := getUserKey(u.ID)

	pipe := r.client.Pipeline()
	pipe.Del(ctx, userKey)
	pipe.HSet(ctx, userKey, userToHash(u))
	pipe.SAdd(ctx, userIDsKey, u.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store user: %w", err)
	}

	return nil
}

func (r *RedisRepository) Update(ctx context.Context, u *User) error {
	userKey := getUserKey(u.ID)

	exists, err := r.client.Exists(ctx, userKey).Result()
	if err != nil {
		return fmt.Errorf("failed to check user existence: %w", err)
	}
	if exists == 0 {
		return ErrNotFound
	}

	// Merge-write: set the present fields, delete the cleared ones.
	pipe := r.client.Pipeline()
	pipe.HSet(ctx, userKey, userToHash(u))
	if cleared := clearedFields(u); len(cleared) > 0 {
		pipe.HDel(ctx, userKey, cleared...)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

func (r *RedisRepository) Remove(ctx context.Context, id string) (bool, error) {
	removed, err := r.client.Del(ctx, getUserKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}

	if err := r.client.SRem(ctx, userIDsKey, id).Err(); err != nil {
		return false, fmt.Errorf("failed to remove user id from index: %w", err)
	}

	return removed > 0, nil
}

func (r *RedisRepository) GenerateID() (string, error) {
	return generateID()
}

func userToHash(u *User) map[string]any {
	fields := map[string]any{
		"id":   u.ID,
		"name": u.Name,
	}
	if u.ZipCode != nil {
		fields["zip_code"] = *u.ZipCode
	}
	if u.Latitude != nil {
		fields["latitude"] = strconv.FormatFloat(*u.Latitude, 'f', -1, 64)
	}
	if u.Longitude != nil {
		fields["longitude"] = strconv.FormatFloat(*u.Longitude, 'f', -1, 64)
	}
	if u.Timezone != nil {
		fields["timezone"] = *u.Timezone
	}
	return fields
}

// clearedFields lists hash fields that must be deleted because the record
// holds nil for them.
func clearedFields(u *User) []string {
	var cleared []string
	if u.ZipCode == nil {
		cleared = append(cleared, "zip_code")
	}
	if u.Latitude == nil {
		cleared = append(cleared, "latitude")
	}
	if u.Longitude == nil {
		cleared = append(cleared, "longitude")
	}
	if u.Timezone == nil {
		cleared = append(cleared, "timezone")
	}
	return cleared
}

func hashToUser(id string, data map[string]string) (*User, error) {
	u := &User{
		ID:   id,
		Name: data["name"],
	}

	if zip, ok := data["zip_code"]; ok {
		u.ZipCode = &zip
	}
	if raw, ok := data["latitude"]; ok {
		lat, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt latitude for user %s: %w", id, err)
		}
		u.Latitude = &lat
	}
	if raw, ok := data["longitude"]; ok {
		lon, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt longitude for user %s: %w", id, err)
		}
		u.Longitude = &lon
	}
	if tz, ok := data["timezone"]; ok {
		u.Timezone = &tz
	}

	return u, nil
}
