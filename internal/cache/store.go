// Snapshot Store - 오케스트레이션 결과의 2-tier 캐시
//
// 조회 순서:
//  1. Tier 1 (exact): (정규화된 엔티티, 정렬된 facet 집합) 해시 키의 O(1) 조회, TTL 경계
//  2. Tier 2 (semantic): exact 미스 시 엔티티 이름 임베딩으로 최근 캐시 키를
//     코사인 유사도 검색 ("Tesla" vs "Tesla Inc" 같은 근사 중복 흡수)
//  3. 둘 다 미스면 run 함수 실행 후 양쪽 tier에 기록
//
// 동일 키에 대한 동시 요청은 singleflight로 한 번의 실행으로 합쳐짐
// COMPLETE Snapshot만 캐시에 기록됨 (run이 에러를 반환하면 기록 없음)

package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bizradar/backend/internal/model"
	"golang.org/x/sync/singleflight"
)

// Embedder - 엔티티 이름 임베딩 생성 (tier 2 조회용)
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, string, error)
}

// SemanticIndex - 캐시 키 벡터 인덱스 (pgvector 기반)
type SemanticIndex interface {
	InsertCacheKey(ctx context.Context, key, entity string, vector []float32) error
	// NearestCacheKey - 유사도가 minSimilarity 이상인 가장 가까운 키 조회 (미스 시 "")
	NearestCacheKey(ctx context.Context, vector []float32, minSimilarity float64) (string, float64, error)
}

// RunFunc - 캐시 미스 시 실행할 오케스트레이션
type RunFunc func(ctx context.Context) (*model.Snapshot, error)

type entry struct {
	snapshot  *model.Snapshot
	expiresAt time.Time
}

// Store 구조체 정의
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group

	embedder Embedder      // nil 허용 (tier 2 비활성)
	index    SemanticIndex // nil 허용

	defaultTTL    time.Duration
	volatileTTL   time.Duration
	minSimilarity float64
}

// Store 객체 생성
func NewStore(embedder Embedder, index SemanticIndex, defaultTTL, volatileTTL time.Duration, minSimilarity float64) *Store {
	return &Store{
		entries:       make(map[string]entry),
		embedder:      embedder,
		index:         index,
		defaultTTL:    defaultTTL,
		volatileTTL:   volatileTTL,
		minSimilarity: minSimilarity,
	}
}

// Key - (엔티티, facet 집합)의 결정적 exact 키
func Key(entityID string, facets []model.FacetKind) string {
	names := make([]string, 0, len(facets))
	for _, f := range facets {
		names = append(names, string(f))
	}
	sort.Strings(names)

	h := sha256.New()
	h.Write([]byte(NormalizeEntity(entityID)))
	h.Write([]byte("|"))
	h.Write([]byte(strings.Join(names, ",")))
	return hex.EncodeToString(h.Sum(nil))
}

// NormalizeEntity - 엔티티 이름 정규화 (소문자, 공백 축약)
func NormalizeEntity(entityID string) string {
	return strings.Join(strings.Fields(strings.ToLower(entityID)), " ")
}

type lookupResult struct {
	snapshot *model.Snapshot
	cached   bool
}

// GetOrRun - 캐시 조회 후 미스 시 run 실행
// 두 번째 반환값은 캐시에서 서빙됐는지 여부
func (s *Store) GetOrRun(ctx context.Context, entityID string, facets []model.FacetKind, run RunFunc) (*model.Snapshot, bool, error) {
	key := Key(entityID, facets)

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		// Tier 1: exact
		if snap, ok := s.lookup(key); ok {
			return lookupResult{snapshot: snap, cached: true}, nil
		}

		// Tier 2: semantic
		vector := s.embedEntity(ctx, entityID)
		if vector != nil {
			if snap, ok := s.semanticLookup(ctx, vector); ok {
				return lookupResult{snapshot: snap, cached: true}, nil
			}
		}

		snap, err := run(ctx)
		if err != nil {
			return nil, err
		}

		s.put(key, snap, s.ttlFor(facets))
		if vector != nil && s.index != nil {
			if err := s.index.InsertCacheKey(ctx, key, NormalizeEntity(entityID), vector); err != nil {
				// 인덱스 기록 실패는 tier 2 효율만 떨어뜨릴 뿐 결과에 영향 없음
				log.Printf("Failed to index cache key: key=%s, error=%v", key, err)
			}
		}
		return lookupResult{snapshot: snap, cached: false}, nil
	})
	if err != nil {
		return nil, false, err
	}

	res := v.(lookupResult)
	return res.snapshot, res.cached, nil
}

// lookup - tier 1 조회 (만료 엔트리는 lazy 제거)
func (s *Store) lookup(key string) (*model.Snapshot, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false
	}
	return e.snapshot, true
}

// semanticLookup - tier 2 조회
// 인덱스가 반환한 키도 in-memory TTL 검증을 통과해야 함
func (s *Store) semanticLookup(ctx context.Context, vector []float32) (*model.Snapshot, bool) {
	if s.index == nil {
		return nil, false
	}
	key, similarity, err := s.index.NearestCacheKey(ctx, vector, s.minSimilarity)
	if err != nil {
		log.Printf("Semantic cache lookup failed: %v", err)
		return nil, false
	}
	if key == "" {
		return nil, false
	}
	snap, ok := s.lookup(key)
	if ok {
		log.Printf("Semantic cache hit: key=%s, similarity=%.3f", key, similarity)
	}
	return snap, ok
}

// embedEntity - 엔티티 이름 임베딩 (실패 시 nil, tier 2만 비활성화)
func (s *Store) embedEntity(ctx context.Context, entityID string) []float32 {
	if s.embedder == nil {
		return nil
	}
	vector, _, err := s.embedder.EmbedText(ctx, NormalizeEntity(entityID))
	if err != nil {
		log.Printf("Entity embedding failed, skipping semantic tier: %v", err)
		return nil
	}
	return vector
}

func (s *Store) put(key string, snap *model.Snapshot, ttl time.Duration) {
	s.mu.Lock()
	s.entries[key] = entry{snapshot: snap, expiresAt: time.Now().Add(ttl)}
	s.mu.Unlock()
}

// ttlFor - facet 구성에 따른 TTL
// 휘발성 facet(trends)이 포함되면 짧은 TTL 적용
func (s *Store) ttlFor(facets []model.FacetKind) time.Duration {
	for _, f := range facets {
		if f == model.FacetTrends {
			return s.volatileTTL
		}
	}
	return s.defaultTTL
}
