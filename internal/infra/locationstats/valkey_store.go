package locationstats

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/airquality-advisor/internal/domain/airquality"
)

// ValkeyStore ranks assessed locations in a sorted set and keeps their
// display names in a single hash keyed by canonical name.
//
//	<prefix>:locations:trending  ZSET canonical -> count
//	<prefix>:locations:display   HASH canonical -> first display name seen
type ValkeyStore struct {
	client valkey.Client
	prefix string
	logger *slog.Logger
}

// NewValkeyStore constructs a store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string, logger *slog.Logger) *ValkeyStore {
	if prefix == "" {
		prefix = "airquality"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ValkeyStore{client: client, prefix: prefix, logger: logger.With("component", "locationstats.valkey")}
}

// Increment bumps the counter and records the display name in one round trip.
// A failed display write is logged; Top then falls back to the canonical name.
func (s *ValkeyStore) Increment(ctx context.Context, canonical, display string) error {
	if canonical == "" {
		return nil
	}
	cmds := valkey.Commands{
		s.client.B().Zincrby().Key(s.rankingKey()).Increment(1).Member(canonical).Build(),
	}
	if display != "" {
		cmds = append(cmds, s.client.B().Hsetnx().Key(s.displayKey()).Field(canonical).Value(display).Build())
	}
	results := s.client.DoMulti(ctx, cmds...)
	if err := results[0].Error(); err != nil {
		return fmt.Errorf("increment %q: %w", canonical, err)
	}
	if len(results) > 1 {
		if err := results[1].Error(); err != nil {
			s.logger.Warn("store display name failed", "location", canonical, "error", err)
		}
	}
	return nil
}

// Top returns up to limit locations, highest count first.
func (s *ValkeyStore) Top(ctx context.Context, limit int) ([]airquality.TrendingLocation, error) {
	if limit <= 0 {
		limit = 10
	}
	scores, err := s.client.Do(ctx, s.client.B().Zrevrange().Key(s.rankingKey()).Start(0).Stop(int64(limit-1)).Withscores().Build()).AsZScores()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read location ranking: %w", err)
	}
	if len(scores) == 0 {
		return nil, nil
	}
	return rankLocations(scores, s.displayNames(ctx, scores)), nil
}

// displayNames resolves every ranked member with one HMGET. Missing entries stay blank.
func (s *ValkeyStore) displayNames(ctx context.Context, scores []valkey.ZScore) []string {
	members := make([]string, len(scores))
	for i, z := range scores {
		members[i] = z.Member
	}
	names := make([]string, len(members))
	values, err := s.client.Do(ctx, s.client.B().Hmget().Key(s.displayKey()).Field(members...).Build()).ToArray()
	if err != nil {
		s.logger.Warn("load display names failed", "error", err)
		return names
	}
	for i := range values {
		if i >= len(names) || values[i].IsNil() {
			continue
		}
		if name, err := values[i].ToString(); err == nil {
			names[i] = name
		}
	}
	return names
}

// rankLocations pairs ranked members with their display names, using the canonical name when none is stored.
func rankLocations(scores []valkey.ZScore, names []string) []airquality.TrendingLocation {
	out := make([]airquality.TrendingLocation, 0, len(scores))
	for i, z := range scores {
		location := z.Member
		if i < len(names) && names[i] != "" {
			location = names[i]
		}
		out = append(out, airquality.TrendingLocation{Location: location, Count: int64(z.Score)})
	}
	return out
}

func (s *ValkeyStore) rankingKey() string {
	return s.prefix + ":locations:trending"
}

func (s *ValkeyStore) displayKey() string {
	return s.prefix + ":locations:display"
}

var _ airquality.LocationStats = (*ValkeyStore)(nil)
