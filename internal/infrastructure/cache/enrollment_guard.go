package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if it still carries our token, so a
// holder whose lock expired cannot release somebody else's.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// EnrollmentGuard serialises enrollment attempts of one learner for one course
// across every API instance.
type EnrollmentGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewEnrollmentGuard(client *redis.Client, ttl time.Duration) *EnrollmentGuard {
	return &EnrollmentGuard{client: client, ttl: ttl}
}

func guardKey(learnerID, courseID uuid.UUID) string {
	return fmt.Sprintf("enroll_lock:%s:%s", learnerID, courseID)
}

// Acquire takes the lock. ok is false when another attempt holds it. The
// returned release func must be called once the attempt finishes.
func (g *EnrollmentGuard) Acquire(ctx context.Context, learnerID, courseID uuid.UUID) (release func(), ok bool, err error) {
	key := guardKey(learnerID, courseID)
	token := uuid.NewString()

	ok, err = g.client.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil || !ok {
		return func() {}, ok, err
	}

	release = func() {
		// The attempt may have been cancelled; the lock still has to go.
		if err := releaseScript.Run(context.WithoutCancel(ctx), g.client, []string{key}, token).Err(); err != nil {
			log.Printf("enrollment guard release %s: %v", key, err)
		}
	}
	return release, true, nil
}
