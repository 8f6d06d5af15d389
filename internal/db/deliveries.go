package db

import (
	"context"
	"fmt"
	"time"

	"github.com/bizradar/backend/internal/model"
)

// EnsureDeliverySchema - alert_deliveries 테이블 생성
func (db *Postgres) EnsureDeliverySchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS alert_deliveries (
			id BIGSERIAL PRIMARY KEY,
			alert_id TEXT NOT NULL,
			channel TEXT NOT NULL,
			destination TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'sent',
			attempts INT NOT NULL DEFAULT 1,
			last_error TEXT,
			next_attempt_at TIMESTAMPTZ,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS alert_deliveries_pending_idx ON alert_deliveries(next_attempt_at) WHERE status = 'pending_retry'`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// RecordDelivery - 전송 결과 기록
func (db *Postgres) RecordDelivery(ctx context.Context, alertID, channel, destination string, status model.DeliveryStatus, attempts int, lastError string, nextAttemptAt time.Time) error {
	var (
		errPtr  *string
		nextPtr *time.Time
	)
	if lastError != "" {
		errPtr = &lastError
	}
	if !nextAttemptAt.IsZero() {
		nextPtr = &nextAttemptAt
	}

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO alert_deliveries (alert_id, channel, destination, status, attempts, last_error, next_attempt_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, alertID, channel, destination, status, attempts, errPtr, nextPtr)
	return err
}

// DuePendingDeliveries - 재시도 기한이 도래한 전송 조회
func (db *Postgres) DuePendingDeliveries(ctx context.Context, now time.Time, limit int) ([]model.AlertDelivery, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, alert_id, channel, destination, status, attempts, last_error, next_attempt_at, updated_at
		FROM alert_deliveries
		WHERE status = 'pending_retry' AND next_attempt_at <= $1
		ORDER BY next_attempt_at
		LIMIT $2
	`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []model.AlertDelivery
	for rows.Next() {
		var (
			d       model.AlertDelivery
			nextPtr *time.Time
		)
		if err := rows.Scan(&d.ID, &d.AlertID, &d.Channel, &d.Destination, &d.Status,
			&d.Attempts, &d.LastError, &nextPtr, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}
		if nextPtr != nil {
			d.NextAttemptAt = *nextPtr
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}

// UpdateDeliveryResult - 재시도 결과 반영
func (db *Postgres) UpdateDeliveryResult(ctx context.Context, id int64, status model.DeliveryStatus, attempts int, lastError string, nextAttemptAt time.Time) error {
	var (
		errPtr  *string
		nextPtr *time.Time
	)
	if lastError != "" {
		errPtr = &lastError
	}
	if !nextAttemptAt.IsZero() {
		nextPtr = &nextAttemptAt
	}

	_, err := db.Pool.Exec(ctx, `
		UPDATE alert_deliveries
		SET status = $2, attempts = $3, last_error = $4, next_attempt_at = $5, updated_at = NOW()
		WHERE id = $1
	`, id, status, attempts, errPtr, nextPtr)
	return err
}
