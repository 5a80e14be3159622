package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrLocked is returned by Lock when another holder owns the key.
var ErrLocked = errors.New("cache: lock already held")

// unlockScript deletes KEYS[1] only while it still holds this holder's token.
const unlockScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

var newToken = uuid.NewString

// Lock takes a best-effort lock on key for at most ttl. The returned func
// releases it only if the lock still belongs to this caller, so releasing
// after expiry never frees a lock someone else has since taken.
func Lock(ctx context.Context, c Cache, key string, ttl time.Duration) (func(context.Context) error, error) {
	token := newToken()
	ok, err := c.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("Lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return func(ctx context.Context) error {
		if err := c.Eval(ctx, unlockScript, []string{key}, token).Err(); err != nil {
			return fmt.Errorf("Unlock: %w", err)
		}
		return nil
	}, nil
}
