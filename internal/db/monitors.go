package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bizradar/backend/internal/model"
)

// EnsureMonitorSchema - monitors 테이블 생성
func (db *Postgres) EnsureMonitorSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS monitors (
			id TEXT PRIMARY KEY,
			entity_id TEXT NOT NULL,
			config JSONB NOT NULL DEFAULT '{}',
			status TEXT NOT NULL DEFAULT 'active',
			next_check_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			consecutive_failures INT NOT NULL DEFAULT 0,
			last_error TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS monitors_due_idx ON monitors(next_check_at) WHERE status = 'active'`,
		`CREATE INDEX IF NOT EXISTS monitors_entity_idx ON monitors(entity_id)`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

const monitorColumns = `id, entity_id, config, status, next_check_at, consecutive_failures, last_error, created_at, updated_at`

// InsertMonitor - Monitor 등록
func (db *Postgres) InsertMonitor(ctx context.Context, m *model.Monitor) error {
	configJSON, err := json.Marshal(m.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal monitor config: %w", err)
	}

	query := `
		INSERT INTO monitors (id, entity_id, config, status, next_check_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err = db.Pool.Exec(ctx, query, m.ID, m.EntityID, configJSON, m.Status, m.NextCheckAt)
	return err
}

// GetMonitor - ID로 단건 조회 (deleted 포함)
func (db *Postgres) GetMonitor(ctx context.Context, id string) (*model.Monitor, error) {
	row := db.Pool.QueryRow(ctx, `SELECT `+monitorColumns+` FROM monitors WHERE id = $1`, id)
	return scanMonitor(row)
}

// ListMonitors - deleted 제외 전체 목록
func (db *Postgres) ListMonitors(ctx context.Context) ([]model.Monitor, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+monitorColumns+`
		FROM monitors
		WHERE status != 'deleted'
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query monitors: %w", err)
	}
	defer rows.Close()

	var monitors []model.Monitor
	for rows.Next() {
		m, err := scanMonitor(rows)
		if err != nil {
			return nil, err
		}
		monitors = append(monitors, *m)
	}
	if monitors == nil {
		monitors = []model.Monitor{}
	}
	return monitors, rows.Err()
}

// UpdateMonitorConfig - 사용자 설정 변경
func (db *Postgres) UpdateMonitorConfig(ctx context.Context, id string, cfg model.MonitorConfig) error {
	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal monitor config: %w", err)
	}
	_, err = db.Pool.Exec(ctx, `
		UPDATE monitors SET config = $2, updated_at = NOW()
		WHERE id = $1 AND status != 'deleted'
	`, id, configJSON)
	return err
}

// UpdateMonitorStatus - 상태 전환 (사용자 토글/soft delete/재개)
// resetFailures가 true면 consecutive_failures와 last_error도 초기화
func (db *Postgres) UpdateMonitorStatus(ctx context.Context, id string, status model.MonitorStatus, resetFailures bool) error {
	if resetFailures {
		_, err := db.Pool.Exec(ctx, `
			UPDATE monitors
			SET status = $2, consecutive_failures = 0, last_error = NULL, next_check_at = NOW(), updated_at = NOW()
			WHERE id = $1
		`, id, status)
		return err
	}
	_, err := db.Pool.Exec(ctx, `
		UPDATE monitors SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	return err
}

// ClaimDueMonitors - 체크 기한이 도래한 active Monitor를 원자적으로 claim
//
// claim 시점에 next_check_at을 cadence만큼 전진시키므로 같은 Monitor가
// 두 tick에 의해 동시에 처리되는 일이 없음 (Monitor당 in-flight 체크는 최대 1개)
func (db *Postgres) ClaimDueMonitors(ctx context.Context, now time.Time, limit int) ([]model.Monitor, error) {
	query := `
		UPDATE monitors m
		SET next_check_at = $1::timestamptz + CASE m.config->>'cadence'
				WHEN 'hourly' THEN interval '1 hour'
				WHEN 'weekly' THEN interval '7 days'
				ELSE interval '1 day'
			END,
			updated_at = NOW()
		WHERE m.id IN (
			SELECT id FROM monitors
			WHERE status = 'active' AND next_check_at <= $1
			ORDER BY next_check_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + monitorColumns

	rows, err := db.Pool.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to claim due monitors: %w", err)
	}
	defer rows.Close()

	var claimed []model.Monitor
	for rows.Next() {
		m, err := scanMonitor(rows)
		if err != nil {
			return nil, err
		}
		claimed = append(claimed, *m)
	}
	return claimed, rows.Err()
}

// RecordCheckSuccess - 성공 체크: 실패 카운터 리셋
func (db *Postgres) RecordCheckSuccess(ctx context.Context, id string) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE monitors
		SET consecutive_failures = 0, last_error = NULL, updated_at = NOW()
		WHERE id = $1
	`, id)
	return err
}

// RecordCheckFailure - 실패 체크: 카운터 증가, ceiling 도달 시 error로 전환
// 갱신된 카운터 값을 반환
func (db *Postgres) RecordCheckFailure(ctx context.Context, id, lastError string, ceiling int) (int, error) {
	var failures int
	err := db.Pool.QueryRow(ctx, `
		UPDATE monitors
		SET consecutive_failures = consecutive_failures + 1,
			last_error = $2,
			status = CASE WHEN consecutive_failures + 1 >= $3 THEN 'error' ELSE status END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING consecutive_failures
	`, id, lastError, ceiling).Scan(&failures)
	return failures, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMonitor(row rowScanner) (*model.Monitor, error) {
	var (
		m          model.Monitor
		configJSON []byte
	)
	if err := row.Scan(&m.ID, &m.EntityID, &configJSON, &m.Status, &m.NextCheckAt,
		&m.ConsecutiveFailures, &m.LastError, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan monitor: %w", err)
	}
	if err := json.Unmarshal(configJSON, &m.Config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal monitor config: %w", err)
	}
	return &m, nil
}
