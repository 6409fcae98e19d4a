package redisinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/go-api-authsession/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	codeKeyPrefix  = "code:"
	sendKeyPrefix  = "send:"
	throttleMarker = "1"
)

// compareAndDeleteLua deletes KEYS[1] only while it still holds ARGV[1].
// Returns 1 when this call consumed the record, 0 otherwise.
var compareAndDeleteLua = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`)

// CodeStore keeps verification codes (code:<purpose>:<identifier>) and the
// send-throttle flags (send:<purpose>:<identifier>) that gate re-sending.
type CodeStore struct {
	client  redis.UniversalClient
	timeout time.Duration
}

func NewCodeStore(client redis.UniversalClient, timeout time.Duration) *CodeStore {
	return &CodeStore{client: client, timeout: timeout}
}

func codeKey(purpose domain.Purpose, identifier string) string {
	return codeKeyPrefix + string(purpose) + ":" + identifier
}

func sendKey(purpose domain.Purpose, identifier string) string {
	return sendKeyPrefix + string(purpose) + ":" + identifier
}

// Put stores code, replacing any earlier one and resetting its TTL.
func (s *CodeStore) Put(ctx context.Context, purpose domain.Purpose, identifier, code string, ttl time.Duration) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.client.Set(ctx, codeKey(purpose, identifier), code, ttl).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

// Lookup returns the current code or domain.ErrNotFound once it expired or was consumed.
func (s *CodeStore) Lookup(ctx context.Context, purpose domain.Purpose, identifier string) (string, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	code, err := s.client.Get(ctx, codeKey(purpose, identifier)).Result()
	if isNil(err) {
		return "", fmt.Errorf("code not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return "", unavailable(err)
	}
	return code, nil
}

// ConsumeIfEqual deletes the record only if it still holds code. It reports
// false when another caller consumed or replaced it first.
func (s *CodeStore) ConsumeIfEqual(ctx context.Context, purpose domain.Purpose, identifier, code string) (bool, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	n, err := compareAndDeleteLua.Run(ctx, s.client, []string{codeKey(purpose, identifier)}, code).Int64()
	if err != nil {
		return false, unavailable(err)
	}
	return n == 1, nil
}

// AcquireSendSlot sets the throttle flag if absent. It returns false while a
// previous flag for the same purpose and identifier is still live.
func (s *CodeStore) AcquireSendSlot(ctx context.Context, purpose domain.Purpose, identifier string, window time.Duration) (bool, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	ok, err := s.client.SetNX(ctx, sendKey(purpose, identifier), throttleMarker, window).Result()
	if err != nil {
		return false, unavailable(err)
	}
	return ok, nil
}

// ReleaseSendSlot clears the throttle flag.
func (s *CodeStore) ReleaseSendSlot(ctx context.Context, purpose domain.Purpose, identifier string) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.client.Del(ctx, sendKey(purpose, identifier)).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}
