package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"teachhub/internal/domain"
)

// CourseCache keeps course detail pages in redis as JSON.
type CourseCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCourseCache(client *redis.Client, ttl time.Duration) *CourseCache {
	return &CourseCache{client: client, ttl: ttl}
}

func courseKey(id uuid.UUID) string {
	return "course:detail:" + id.String()
}

// Get returns the cached course, or nil with no error on a miss.
func (c *CourseCache) Get(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	val, err := c.client.Get(ctx, courseKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var course domain.Course
	if err := json.Unmarshal(val, &course); err != nil {
		// Stale layout, drop it and fall back to the database.
		c.client.Del(ctx, courseKey(id))
		return nil, nil
	}
	return &course, nil
}

func (c *CourseCache) Set(ctx context.Context, course *domain.Course) error {
	data, err := json.Marshal(course)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, courseKey(course.ID), data, c.ttl).Err()
}

func (c *CourseCache) Invalidate(ctx context.Context, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, courseKey(id))
	}
	return c.client.Del(ctx, keys...).Err()
}
