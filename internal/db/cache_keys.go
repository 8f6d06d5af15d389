package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

// EnsureCacheSchema - snapshot_cache_keys 테이블 생성
// 엔티티 이름 임베딩으로 캐시 키를 의미 검색하기 위한 pgvector 인덱스
func (db *Postgres) EnsureCacheSchema(ctx context.Context) error {
	queries := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`
		CREATE TABLE IF NOT EXISTS snapshot_cache_keys (
			id BIGSERIAL PRIMARY KEY,
			cache_key TEXT NOT NULL UNIQUE,
			entity TEXT NOT NULL,
			embedding vector(768) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS snapshot_cache_keys_created_idx ON snapshot_cache_keys(created_at DESC)`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// InsertCacheKey - 캐시 키 임베딩 등록 (동일 키는 갱신)
func (db *Postgres) InsertCacheKey(ctx context.Context, key, entity string, vector []float32) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO snapshot_cache_keys (cache_key, entity, embedding)
		VALUES ($1, $2, $3)
		ON CONFLICT (cache_key) DO UPDATE SET
			entity = EXCLUDED.entity,
			embedding = EXCLUDED.embedding,
			created_at = NOW()
	`, key, entity, pgvector.NewVector(vector))
	return err
}

// NearestCacheKey - 코사인 유사도가 minSimilarity 이상인 최근접 키 조회
// 미스 시 빈 문자열 반환 (에러 아님)
func (db *Postgres) NearestCacheKey(ctx context.Context, vector []float32, minSimilarity float64) (string, float64, error) {
	var (
		key        string
		similarity float64
	)
	err := db.Pool.QueryRow(ctx, `
		SELECT cache_key, 1 - (embedding <=> $1) AS similarity
		FROM snapshot_cache_keys
		WHERE 1 - (embedding <=> $1) >= $2
		ORDER BY embedding <=> $1
		LIMIT 1
	`, pgvector.NewVector(vector), minSimilarity).Scan(&key, &similarity)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", 0, nil
	}
	if err != nil {
		return "", 0, err
	}
	return key, similarity, nil
}
