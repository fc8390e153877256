package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-gradebook-api/internal/dto"
	"github.com/noah-isme/gema-gradebook-api/internal/observability"
)

// GradeInvalidator drops cached grades after a write that can change them.
type GradeInvalidator interface {
	Invalidate(ctx context.Context, courseID string)
}

// GradeCache stores overall grades in Redis under a per-course version counter.
// Bumping the version orphans every entry of the course; TTL reclaims them.
type GradeCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewGradeCache builds the cache; a nil client disables caching.
func NewGradeCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *GradeCache {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &GradeCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "grade_cache").Logger(),
	}
}

func versionKey(courseID string) string {
	return fmt.Sprintf("grades:course:%s:version", courseID)
}

func entryKey(courseID string, version int64, studentKey string) string {
	return fmt.Sprintf("grades:course:%s:v%d:student:%s", courseID, version, studentKey)
}

func (c *GradeCache) enabled() bool {
	return c != nil && c.client != nil
}

func (c *GradeCache) version(ctx context.Context, courseID string) (int64, error) {
	version, err := c.client.Get(ctx, versionKey(courseID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return version, err
}

// Get returns a cached grade for the course and student key together with the
// version it was looked up under. A miss still returns the version so the caller
// can store its result with Set; a negative version means nothing may be stored.
func (c *GradeCache) Get(ctx context.Context, courseID, studentKey string) (dto.OverallGradeResponse, int64, bool) {
	if !c.enabled() {
		return dto.OverallGradeResponse{}, -1, false
	}

	version, err := c.version(ctx, courseID)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to read grade cache version")
		observability.GradeCacheLookups().WithLabelValues("error").Inc()
		return dto.OverallGradeResponse{}, -1, false
	}

	cached, err := c.client.Get(ctx, entryKey(courseID, version, studentKey)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Msg("failed to read grade cache")
			observability.GradeCacheLookups().WithLabelValues("error").Inc()
		} else {
			observability.GradeCacheLookups().WithLabelValues("miss").Inc()
		}
		return dto.OverallGradeResponse{}, version, false
	}

	var response dto.OverallGradeResponse
	if err := json.Unmarshal([]byte(cached), &response); err != nil {
		observability.GradeCacheLookups().WithLabelValues("error").Inc()
		return dto.OverallGradeResponse{}, version, false
	}

	observability.GradeCacheLookups().WithLabelValues("hit").Inc()
	return response, version, true
}

// Set stores a computed grade under the version returned by the Get that preceded
// the computation. An invalidation in between leaves the entry orphaned.
func (c *GradeCache) Set(ctx context.Context, courseID, studentKey string, version int64, response dto.OverallGradeResponse) {
	if !c.enabled() || version < 0 {
		return
	}

	payload, err := json.Marshal(response)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, entryKey(courseID, version, studentKey), payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to store grade cache")
	}
}

// Invalidate bumps the course version so later reads miss.
func (c *GradeCache) Invalidate(ctx context.Context, courseID string) {
	if !c.enabled() {
		return
	}

	if err := c.client.Incr(ctx, versionKey(courseID)).Err(); err != nil {
		c.logger.Warn().Err(err).Str("course_id", courseID).Msg("failed to invalidate grade cache")
	}
}
