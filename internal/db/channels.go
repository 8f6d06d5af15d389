package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bizradar/backend/internal/model"
)

// EnsureChannelSchema - channel_configs 테이블 생성
func (db *Postgres) EnsureChannelSchema(ctx context.Context) error {
	_, err := db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS channel_configs (
			name TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			destination TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// UpsertChannelConfig - 채널 설정 등록/갱신
func (db *Postgres) UpsertChannelConfig(ctx context.Context, cfg model.ChannelConfig) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO channel_configs (name, kind, destination, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (name) DO UPDATE
		SET kind = EXCLUDED.kind, destination = EXCLUDED.destination, updated_at = NOW()
	`, cfg.Name, cfg.Kind, cfg.Destination)
	return err
}

// GetChannelConfigByName - 단일 채널 설정 조회
func (db *Postgres) GetChannelConfigByName(ctx context.Context, name string) (*model.ChannelConfig, error) {
	var cfg model.ChannelConfig
	err := db.Pool.QueryRow(ctx, `
		SELECT name, kind, destination, updated_at
		FROM channel_configs
		WHERE name = $1
	`, name).Scan(&cfg.Name, &cfg.Kind, &cfg.Destination, &cfg.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("channel config not found: %s", name)
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetChannelConfigs - 전체 채널 설정 조회
func (db *Postgres) GetChannelConfigs(ctx context.Context) ([]model.ChannelConfig, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT name, kind, destination, updated_at
		FROM channel_configs
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query channel configs: %w", err)
	}
	defer rows.Close()

	var configs []model.ChannelConfig
	for rows.Next() {
		var cfg model.ChannelConfig
		if err := rows.Scan(&cfg.Name, &cfg.Kind, &cfg.Destination, &cfg.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan channel config: %w", err)
		}
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}
