package cache

import (
	"context"
	"time"

	"enrollment-api/internal/model"
)

// ProfileCache keeps resolved user profiles close to the auth path so a
// request does not hit the database on every token check. Misses and
// backend failures are both reported as a plain miss.
type ProfileCache interface {
	Get(ctx context.Context, uid string) (*model.UserProfile, bool)
	Set(ctx context.Context, uid string, profile *model.UserProfile, ttl time.Duration)
	Evict(ctx context.Context, uid string)
}
