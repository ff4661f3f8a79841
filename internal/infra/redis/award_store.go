package redis

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/Laurent-studi/rtfmlara-sub002/internal/domain"
	"github.com/redis/go-redis/v9"
)

// AwardStore keeps awards in a per-user hash. HSETNX gives the at-most-once
// guarantee: of two racing CreateAward calls only one writes the field, and
// the loser reads back the winner's row.
//
// Layout:
//
//	HSETNX awards:{userID} {achievableID} {json}
//	SET    trophies:{userID} {total}
type AwardStore struct {
	client *redis.Client
}

func NewAwardStore(client *redis.Client) *AwardStore {
	return &AwardStore{client: client}
}

func (s *AwardStore) CreateAward(ctx context.Context, award domain.Award) (domain.Award, bool, error) {
	data, err := json.Marshal(award)
	if err != nil {
		return domain.Award{}, false, err
	}

	created, err := s.client.HSetNX(ctx, s.awardsKey(award.UserID), award.AchievableID, data).Result()
	if err != nil {
		return domain.Award{}, false, err
	}
	if created {
		return award, true, nil
	}

	raw, err := s.client.HGet(ctx, s.awardsKey(award.UserID), award.AchievableID).Bytes()
	if err != nil {
		return domain.Award{}, false, err
	}
	var existing domain.Award
	if err := json.Unmarshal(raw, &existing); err != nil {
		return domain.Award{}, false, err
	}
	return existing, false, nil
}

func (s *AwardStore) AwardsFor(ctx context.Context, userID string) ([]domain.Award, error) {
	rows, err := s.client.HGetAll(ctx, s.awardsKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	awards := make([]domain.Award, 0, len(rows))
	for _, raw := range rows {
		var award domain.Award
		if err := json.Unmarshal([]byte(raw), &award); err != nil {
			continue
		}
		awards = append(awards, award)
	}
	return awards, nil
}

func (s *AwardStore) SaveTrophyTotal(ctx context.Context, userID string, total int) error {
	return s.client.Set(ctx, s.trophiesKey(userID), total, 0).Err()
}

// TrophyTotal reads the persisted trophy point aggregate.
func (s *AwardStore) TrophyTotal(ctx context.Context, userID string) (int, error) {
	raw, err := s.client.Get(ctx, s.trophiesKey(userID)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(raw)
}

func (s *AwardStore) awardsKey(userID string) string {
	return "awards:" + userID
}

func (s *AwardStore) trophiesKey(userID string) string {
	return "trophies:" + userID
}
