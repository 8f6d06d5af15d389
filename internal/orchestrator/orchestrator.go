// Phase 기반 오케스트레이션 상태 머신 정의
//
// 처리 흐름:
//  1. Phase 1 (병렬): 독립 수집 Task(research, trends, financial) 동시 실행
//     - 가장 느린 Task가 해소되거나 자체 타임아웃이 지나면 Phase 완료
//     - 부분 성공도 유효: 성공한 Facet만 다음 Phase로 전달
//  2. Phase 2 (의존): framework scoring은 Phase 1 성공 Facet 위에서만 계산
//     - Phase 1 전멸 시 framework는 failed로 기록될 뿐 Phase가 실패하지 않음
//  3. Phase 3 (합성): 실패 여부와 무관하게 전체 Facet을 Snapshot으로 합성
//     - overall_confidence는 성공 소스 수에 따라 가산 (corroboration bonus)
//
// 전체 실패도 최저 신뢰도의 Snapshot을 반환함 (graceful degradation 계약)

package orchestrator

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bizradar/backend/internal/model"
	"github.com/google/uuid"
)

// State - 오케스트레이션 진행 상태 (역방향 전이 없음)
type State string

const (
	StatePending       State = "PENDING"
	StatePhase1Running State = "PHASE_1_RUNNING"
	StatePhase2Running State = "PHASE_2_RUNNING"
	StatePhase3Running State = "PHASE_3_RUNNING"
	StateComplete      State = "COMPLETE"
)

// Orchestrator - Task들을 Phase 순서로 실행하는 엔진
type Orchestrator struct {
	executor    *Executor
	gatherTasks []Task // Phase 1
	scoringTask Task   // Phase 2 (nil 허용)
	taskTimeout time.Duration
}

func New(executor *Executor, gatherTasks []Task, scoringTask Task, taskTimeout time.Duration) *Orchestrator {
	return &Orchestrator{
		executor:    executor,
		gatherTasks: gatherTasks,
		scoringTask: scoringTask,
		taskTimeout: taskTimeout,
	}
}

// Run - 한 엔티티에 대해 요청된 Facet을 수집해 Snapshot 생성
// 에러는 호출 자체가 불가능한 경우(잘못된 입력, ctx 취소)에만 반환
func (o *Orchestrator) Run(ctx context.Context, entityID string, facets []model.FacetKind) (*model.Snapshot, error) {
	if entityID == "" {
		return nil, fmt.Errorf("entity_id is required")
	}
	if len(facets) == 0 {
		return nil, fmt.Errorf("at least one facet is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	requested := make(map[model.FacetKind]bool, len(facets))
	for _, f := range facets {
		if !model.IsKnownFacet(f) {
			return nil, fmt.Errorf("unknown facet: %q", f)
		}
		requested[f] = true
	}

	state := StatePending
	results := make(map[model.FacetKind]model.TaskResult)

	// Phase 1: 병렬 수집
	state = StatePhase1Running
	log.Printf("Orchestration state=%s entity=%s", state, entityID)
	o.runGatherPhase(ctx, entityID, requested, results)

	// Phase 2: Phase 1 결과에 의존하는 framework scoring
	if requested[model.FacetFramework] && o.scoringTask != nil {
		state = StatePhase2Running
		log.Printf("Orchestration state=%s entity=%s", state, entityID)
		results[model.FacetFramework] = o.runScoringPhase(ctx, entityID, results)
	}

	// Phase 3: Snapshot 합성
	state = StatePhase3Running
	log.Printf("Orchestration state=%s entity=%s", state, entityID)
	snapshot := &model.Snapshot{
		ID:        uuid.NewString(),
		EntityID:  entityID,
		CreatedAt: time.Now().UTC(),
		Facets:    results,
	}
	snapshot.OverallConfidence = OverallConfidence(results)

	state = StateComplete
	log.Printf("Orchestration state=%s entity=%s facets=%d successes=%d confidence=%.2f",
		state, entityID, len(results), snapshot.SuccessCount(), snapshot.OverallConfidence)
	return snapshot, nil
}

// runGatherPhase - Phase 1 fan-out/join
// 각 Task는 Executor가 개별 타임아웃으로 감싸므로 join은 유한 시간 내 종료됨
func (o *Orchestrator) runGatherPhase(ctx context.Context, entityID string, requested map[model.FacetKind]bool, results map[model.FacetKind]model.TaskResult) {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	in := Input{EntityID: entityID}

	for _, task := range o.gatherTasks {
		if !requested[task.Facet()] {
			continue
		}
		wg.Add(1)
		go func(task Task) {
			defer wg.Done()
			res := o.executor.Execute(ctx, task, in, o.taskTimeout)
			mu.Lock()
			results[task.Facet()] = res
			mu.Unlock()
		}(task)
	}
	wg.Wait()
}

// runScoringPhase - Phase 2
// Phase 1에서 성공한 Facet이 하나도 없으면 실행 없이 failed로 기록
func (o *Orchestrator) runScoringPhase(ctx context.Context, entityID string, results map[model.FacetKind]model.TaskResult) model.TaskResult {
	succeeded := 0
	sources := make(map[model.FacetKind]model.TaskResult, len(results))
	for kind, res := range results {
		if res.Status == model.StatusSuccess {
			sources[kind] = res
			succeeded++
		}
	}
	if succeeded == 0 {
		log.Printf("Skipping framework scoring: no successful source facets (entity=%s)", entityID)
		return model.TaskResult{Status: model.StatusFailed, Error: "no successful source facets"}
	}

	in := Input{EntityID: entityID, Facets: sources}
	return o.executor.Execute(ctx, o.scoringTask, in, o.taskTimeout)
}
