// 오케스트레이션 실행 비즈니스 로직 정의
//
// 처리 흐름:
//  1. 캐시 조회 (exact → semantic) - 히트 시 오케스트레이션 없이 반환
//  2. 미스 시 Orchestrator.Run으로 Snapshot 생성
//  3. 생성된 Snapshot을 DB에 영속화 (실패해도 결과 반환은 계속 진행)

package service

import (
	"context"
	"log"

	"github.com/bizradar/backend/internal/cache"
	"github.com/bizradar/backend/internal/model"
)

// snapshotRunner - 오케스트레이션 엔진 인터페이스 (service 전용)
type snapshotRunner interface {
	Run(ctx context.Context, entityID string, facets []model.FacetKind) (*model.Snapshot, error)
}

// snapshotCache - 2-tier 캐시 인터페이스
type snapshotCache interface {
	GetOrRun(ctx context.Context, entityID string, facets []model.FacetKind, run cache.RunFunc) (*model.Snapshot, bool, error)
}

// snapshotWriter - Snapshot 영속화 인터페이스
type snapshotWriter interface {
	InsertSnapshot(ctx context.Context, snap *model.Snapshot) error
}

// OrchestrationService 구조체 정의
type OrchestrationService struct {
	orchestrator snapshotRunner
	cache        snapshotCache
	db           snapshotWriter
}

// OrchestrationService 객체 생성
func NewOrchestrationService(orchestrator snapshotRunner, store snapshotCache, db snapshotWriter) *OrchestrationService {
	return &OrchestrationService{
		orchestrator: orchestrator,
		cache:        store,
		db:           db,
	}
}

// Analyze - 엔티티 분석 실행 (캐시 경유)
// 두 번째 반환값은 캐시에서 서빙됐는지 여부
func (s *OrchestrationService) Analyze(ctx context.Context, entityID string, facets []model.FacetKind) (*model.Snapshot, bool, error) {
	return s.cache.GetOrRun(ctx, entityID, facets, func(ctx context.Context) (*model.Snapshot, error) {
		snap, err := s.orchestrator.Run(ctx, entityID, facets)
		if err != nil {
			return nil, err
		}

		// Snapshot 영속화 (비교 기준으로 사용되므로 불변 레코드로 저장)
		if err := s.db.InsertSnapshot(ctx, snap); err != nil {
			// 저장 실패해도 호출자에게 결과 반환은 계속 진행
			log.Printf("Failed to persist snapshot: entity=%s, error=%v", entityID, err)
		}
		return snap, nil
	})
}
