package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bizradar/backend/internal/model"
)

// EnsureAlertSchema - alerts 테이블 생성
func (db *Postgres) EnsureAlertSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS alerts (
			id TEXT PRIMARY KEY,
			monitor_id TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			changes JSONB NOT NULL DEFAULT '[]',
			aggregate_confidence DOUBLE PRECISION NOT NULL,
			read BOOLEAN NOT NULL DEFAULT FALSE,
			user_feedback TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS alerts_monitor_idx ON alerts(monitor_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS alerts_unread_idx ON alerts(read) WHERE read = FALSE`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

const alertColumns = `id, monitor_id, entity_id, changes, aggregate_confidence, read, user_feedback, created_at`

// InsertAlert - Alert 영속화 (자동 삭제 없음)
func (db *Postgres) InsertAlert(ctx context.Context, alert *model.Alert) error {
	changesJSON, err := json.Marshal(alert.Changes)
	if err != nil {
		return fmt.Errorf("failed to marshal alert changes: %w", err)
	}
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO alerts (id, monitor_id, entity_id, changes, aggregate_confidence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, alert.ID, alert.MonitorID, alert.EntityID, changesJSON, alert.AggregateConfidence, alert.CreatedAt)
	return err
}

// GetAlert - ID로 단건 조회
func (db *Postgres) GetAlert(ctx context.Context, id string) (*model.Alert, error) {
	row := db.Pool.QueryRow(ctx, `SELECT `+alertColumns+` FROM alerts WHERE id = $1`, id)
	return scanAlert(row)
}

// ListAlertsByMonitor - Monitor별 Alert 목록 (최신순)
func (db *Postgres) ListAlertsByMonitor(ctx context.Context, monitorID string, limit int) ([]model.Alert, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+alertColumns+`
		FROM alerts
		WHERE monitor_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, monitorID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []model.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *alert)
	}
	if alerts == nil {
		alerts = []model.Alert{}
	}
	return alerts, rows.Err()
}

// MarkAlertRead - 읽음 처리
func (db *Postgres) MarkAlertRead(ctx context.Context, id string) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE alerts SET read = TRUE, updated_at = NOW() WHERE id = $1
	`, id)
	return err
}

// SetAlertFeedback - 사용자 피드백 기록 (helpful | not_helpful)
func (db *Postgres) SetAlertFeedback(ctx context.Context, id string, verdict model.FeedbackVerdict) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE alerts SET user_feedback = $2, updated_at = NOW() WHERE id = $1
	`, id, string(verdict))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("alert not found: %s", id)
	}
	return nil
}

// DimensionFeedbackCounts - 차원별 helpful/not_helpful 집계
// Alert의 changes JSONB를 펼쳐 피드백이 달린 것만 센다 (adaptive weight용)
func (db *Postgres) DimensionFeedbackCounts(ctx context.Context) ([]model.DimensionFeedback, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT c->>'dimension' AS dimension,
			COUNT(*) FILTER (WHERE a.user_feedback = 'helpful') AS helpful,
			COUNT(*) FILTER (WHERE a.user_feedback = 'not_helpful') AS not_helpful
		FROM alerts a, jsonb_array_elements(a.changes) c
		WHERE a.user_feedback IS NOT NULL
		GROUP BY 1
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback counts: %w", err)
	}
	defer rows.Close()

	var counts []model.DimensionFeedback
	for rows.Next() {
		var fb model.DimensionFeedback
		if err := rows.Scan(&fb.Dimension, &fb.Helpful, &fb.NotHelpful); err != nil {
			return nil, err
		}
		counts = append(counts, fb)
	}
	return counts, rows.Err()
}

func scanAlert(row rowScanner) (*model.Alert, error) {
	var (
		alert       model.Alert
		changesJSON []byte
		feedback    *string
	)
	if err := row.Scan(&alert.ID, &alert.MonitorID, &alert.EntityID, &changesJSON,
		&alert.AggregateConfidence, &alert.Read, &feedback, &alert.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan alert: %w", err)
	}
	if err := json.Unmarshal(changesJSON, &alert.Changes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal alert changes: %w", err)
	}
	if feedback != nil {
		v := model.FeedbackVerdict(*feedback)
		alert.Feedback = &v
	}
	return &alert, nil
}
