package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Laurent-studi/rtfmlara-sub002/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// AwardStore persists awards in Postgres. The (user_id, achievable_id)
// primary key plus INSERT ... ON CONFLICT DO NOTHING gives the at-most-once
// guarantee even across processes; the losing inserter reads the winner's row.
type AwardStore struct {
	pool *pgxpool.Pool
}

func NewAwardStore(pool *pgxpool.Pool) *AwardStore {
	return &AwardStore{pool: pool}
}

func (s *AwardStore) CreateAward(ctx context.Context, award domain.Award) (domain.Award, bool, error) {
	payload, err := json.Marshal(award.Payload)
	if err != nil {
		return domain.Award{}, false, err
	}

	tag, err := s.pool.Exec(ctx,
		`INSERT INTO awards (user_id, achievable_id, earned_at, payload)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, achievable_id) DO NOTHING`,
		award.UserID, award.AchievableID, award.EarnedAt, payload)
	if err != nil {
		return domain.Award{}, false, fmt.Errorf("insert award: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return award, true, nil
	}

	existing, err := s.loadAward(ctx, award.UserID, award.AchievableID)
	if err != nil {
		return domain.Award{}, false, err
	}
	return existing, false, nil
}

func (s *AwardStore) AwardsFor(ctx context.Context, userID string) ([]domain.Award, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT achievable_id, earned_at, payload FROM awards WHERE user_id=$1`, userID)
	if err != nil {
		return nil, fmt.Errorf("select awards: %w", err)
	}
	defer rows.Close()

	var awards []domain.Award
	for rows.Next() {
		award := domain.Award{UserID: userID}
		var payload []byte
		if err := rows.Scan(&award.AchievableID, &award.EarnedAt, &payload); err != nil {
			return nil, err
		}
		if len(payload) > 0 {
			_ = json.Unmarshal(payload, &award.Payload)
		}
		awards = append(awards, award)
	}
	return awards, rows.Err()
}

func (s *AwardStore) SaveTrophyTotal(ctx context.Context, userID string, total int) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO trophy_totals (user_id, points, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET points=EXCLUDED.points, updated_at=EXCLUDED.updated_at`,
		userID, total, time.Now())
	if err != nil {
		return fmt.Errorf("save trophy total: %w", err)
	}
	return nil
}

func (s *AwardStore) loadAward(ctx context.Context, userID, achievableID string) (domain.Award, error) {
	award := domain.Award{UserID: userID, AchievableID: achievableID}
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT earned_at, payload FROM awards WHERE user_id=$1 AND achievable_id=$2`,
		userID, achievableID).Scan(&award.EarnedAt, &payload)
	if err != nil {
		return domain.Award{}, fmt.Errorf("load award: %w", err)
	}
	if len(payload) > 0 {
		_ = json.Unmarshal(payload, &award.Payload)
	}
	return award, nil
}
