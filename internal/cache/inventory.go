package cache

import (
	"context"
	"fmt"
	"time"
)

const userRoleKeyPrefix = "user:%d:role"

// UserRoleTTL bounds how long a role change can take to reach the admin gate.
const UserRoleTTL = 5 * time.Minute

// UserRoleKey is the cache key for the role of userID.
func UserRoleKey(userID uint) string {
	return fmt.Sprintf(userRoleKeyPrefix, userID)
}

// Invalidate deletes key; it is a no-op without Redis.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateUser drops every cached entry derived from userID.
func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserRoleKey(userID))
}
