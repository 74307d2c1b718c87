package store

import (
	"context"
	"errors"
	"time"
)

const revokedTokenPrefix = "auth:revoked:"

// TokenDenylist records logged-out token ids until their natural expiry.
type TokenDenylist struct {
	kv KV
}

func NewTokenDenylist(kv KV) *TokenDenylist {
	return &TokenDenylist{kv: kv}
}

// Revoke stores jti for ttl. A non-positive ttl means the token already expired.
func (d *TokenDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return d.kv.Set(ctx, revokedTokenPrefix+jti, "1", ttl)
}

func (d *TokenDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	_, err := d.kv.Get(ctx, revokedTokenPrefix+jti)
	if errors.Is(err, ErrMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
