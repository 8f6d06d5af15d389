package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bizradar/backend/internal/model"
	"github.com/jackc/pgx/v5"
)

// EnsureSnapshotSchema - snapshots 테이블 생성
func (db *Postgres) EnsureSnapshotSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS snapshots (
			id TEXT PRIMARY KEY,
			entity_id TEXT NOT NULL,
			facets JSONB NOT NULL DEFAULT '{}',
			overall_confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL
		)
		`,
		`CREATE INDEX IF NOT EXISTS snapshots_entity_created_idx ON snapshots(entity_id, created_at DESC)`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// InsertSnapshot - COMPLETE Snapshot 영속화 (불변, UPDATE 없음)
func (db *Postgres) InsertSnapshot(ctx context.Context, snap *model.Snapshot) error {
	facetsJSON, err := json.Marshal(snap.Facets)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot facets: %w", err)
	}
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO snapshots (id, entity_id, facets, overall_confidence, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, snap.ID, snap.EntityID, facetsJSON, snap.OverallConfidence, snap.CreatedAt)
	return err
}

// GetLatestSnapshotBefore - 해당 Snapshot 직전의 영속화된 Snapshot 조회
// Change Detector는 항상 직전 Snapshot하고만 비교하므로 이 쿼리가 순서를 보장
func (db *Postgres) GetLatestSnapshotBefore(ctx context.Context, entityID string, before time.Time) (*model.Snapshot, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT id, entity_id, facets, overall_confidence, created_at
		FROM snapshots
		WHERE entity_id = $1 AND created_at < $2
		ORDER BY created_at DESC
		LIMIT 1
	`, entityID, before)

	snap, err := scanSnapshot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		// 첫 체크: 비교 대상 없음
		return nil, nil
	}
	return snap, err
}

// PruneSnapshots - 보존 기간이 지난 Snapshot 정리
// 엔티티별 최신 Snapshot은 다음 비교의 기준이므로 남겨둠
func (db *Postgres) PruneSnapshots(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `
		DELETE FROM snapshots s
		WHERE s.created_at < $1
		AND s.id NOT IN (
			SELECT DISTINCT ON (entity_id) id
			FROM snapshots
			ORDER BY entity_id, created_at DESC
		)
	`, olderThan)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanSnapshot(row rowScanner) (*model.Snapshot, error) {
	var (
		snap       model.Snapshot
		facetsJSON []byte
	)
	if err := row.Scan(&snap.ID, &snap.EntityID, &facetsJSON, &snap.OverallConfidence, &snap.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(facetsJSON, &snap.Facets); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot facets: %w", err)
	}
	return &snap, nil
}
