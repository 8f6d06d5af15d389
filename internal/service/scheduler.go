// Monitor 재체크 Scheduler 정의
//
// 처리 흐름 (tick마다):
//  1. 기한이 도래한 active Monitor를 원자적으로 claim (claim 시점에 next_check_at 전진)
//  2. claim된 Monitor들을 병렬로 체크 (상한: MaxConcurrent)
//     - 오케스트레이션 → 이전 Snapshot 대비 Change 감지 → 신뢰도 스코어링
//     - threshold 이상이면 Alert 저장 + 채널 전송
//  3. 실패한 채널 전송 재시도 (bounded backoff)
//  4. 보존 기간이 지난 Snapshot 정리
//
// 체크 실패는 Monitor의 연속 실패 카운터를 올리고,
// ceiling 도달 시 error 상태로 자동 전환됨 (사용자 resume 전까지 중지)

package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bizradar/backend/internal/config"
	"github.com/bizradar/backend/internal/dispatcher"
	"github.com/bizradar/backend/internal/model"
)

// schedulerStore - Scheduler가 사용하는 DB 인터페이스
type schedulerStore interface {
	ClaimDueMonitors(ctx context.Context, now time.Time, limit int) ([]model.Monitor, error)
	RecordCheckSuccess(ctx context.Context, id string) error
	RecordCheckFailure(ctx context.Context, id, lastError string, ceiling int) (int, error)
	GetLatestSnapshotBefore(ctx context.Context, entityID string, before time.Time) (*model.Snapshot, error)
	InsertAlert(ctx context.Context, alert *model.Alert) error
	PruneSnapshots(ctx context.Context, olderThan time.Time) (int64, error)
}

// analyzer - 오케스트레이션 실행 인터페이스
type analyzer interface {
	Analyze(ctx context.Context, entityID string, facets []model.FacetKind) (*model.Snapshot, bool, error)
}

// changeDetector - Snapshot 비교 인터페이스
type changeDetector interface {
	Detect(prev, curr *model.Snapshot) []model.Change
}

// alertScorer - Change 집합 스코어링 인터페이스 (threshold 미만이면 nil)
type alertScorer interface {
	Score(ctx context.Context, changes []model.Change, monitor *model.Monitor) *model.Alert
}

// alertDispatcher - 채널 전송 인터페이스
type alertDispatcher interface {
	Dispatch(ctx context.Context, alert *model.Alert, channelNames []string) []dispatcher.DeliveryResult
	RetryPending(ctx context.Context, now time.Time)
}

// Scheduler 구조체 정의
type Scheduler struct {
	db            schedulerStore
	orchestration analyzer
	detector      changeDetector
	scorer        alertScorer
	dispatcher    alertDispatcher
	cfg           config.SchedulerConfig
	retention     time.Duration
}

// Scheduler 객체 생성
func NewScheduler(db schedulerStore, orchestration analyzer, detector changeDetector, scorer alertScorer, dispatcher alertDispatcher, cfg config.SchedulerConfig, retentionDays int) *Scheduler {
	return &Scheduler{
		db:            db,
		orchestration: orchestration,
		detector:      detector,
		scorer:        scorer,
		dispatcher:    dispatcher,
		cfg:           cfg,
		retention:     time.Duration(retentionDays) * 24 * time.Hour,
	}
}

// Start - tick 루프 시작 (ctx 취소까지 블로킹, goroutine에서 호출)
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	log.Printf("Scheduler started: tick=%s, maxConcurrent=%d", s.cfg.TickInterval, s.cfg.MaxConcurrent)

	for {
		select {
		case <-ctx.Done():
			log.Printf("Scheduler stopped: %v", ctx.Err())
			return
		case now := <-ticker.C:
			s.Tick(ctx, now.UTC())
		}
	}
}

// Tick - 한 주기의 전체 처리
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	// 1. 기한 도래 Monitor claim
	// claim 시점에 next_check_at이 전진하므로 중복 실행 없음 (프로세스 다중화 포함)
	monitors, err := s.db.ClaimDueMonitors(ctx, now, s.cfg.MaxConcurrent)
	if err != nil {
		log.Printf("Failed to claim due monitors: %v", err)
	}

	// 2. 병렬 체크
	var wg sync.WaitGroup
	for i := range monitors {
		wg.Add(1)
		go func(m model.Monitor) {
			defer wg.Done()
			s.checkMonitor(ctx, &m, now)
		}(monitors[i])
	}
	wg.Wait()

	// 3. 실패 전송 재시도
	s.dispatcher.RetryPending(ctx, now)

	// 4. Snapshot 보존 기간 정리
	if pruned, err := s.db.PruneSnapshots(ctx, now.Add(-s.retention)); err != nil {
		log.Printf("Failed to prune snapshots: %v", err)
	} else if pruned > 0 {
		log.Printf("Pruned %d expired snapshots", pruned)
	}
}

// checkMonitor - Monitor 하나의 재체크 파이프라인
func (s *Scheduler) checkMonitor(ctx context.Context, m *model.Monitor, now time.Time) {
	log.Printf("Checking monitor: id=%s, entity=%s", m.ID, m.EntityID)

	// 비교 기준: 이번 체크 이전의 최신 Snapshot
	prev, err := s.db.GetLatestSnapshotBefore(ctx, m.EntityID, now)
	if err != nil {
		s.recordFailure(ctx, m, fmt.Errorf("failed to load previous snapshot: %w", err))
		return
	}

	curr, cached, err := s.orchestration.Analyze(ctx, m.EntityID, m.Config.EnabledFacets)
	if err != nil {
		s.recordFailure(ctx, m, fmt.Errorf("orchestration failed: %w", err))
		return
	}

	// 첫 체크: 비교 기준이 없으므로 Alert 없이 baseline만 기록됨
	if prev == nil {
		log.Printf("Baseline snapshot recorded: monitor=%s, entity=%s", m.ID, m.EntityID)
		s.recordSuccess(ctx, m)
		return
	}

	// 캐시가 비교 기준보다 새롭지 않은 Snapshot을 반환한 경우 비교 생략
	// (동일 Snapshot 재서빙, 또는 다른 경로의 오케스트레이션이 그 사이에
	//  더 최신 Snapshot을 영속화한 경우 - 역순 비교는 반전된 Change를 만듦)
	if cached && !curr.CreatedAt.After(prev.CreatedAt) {
		log.Printf("Cached snapshot not newer than baseline, skipping comparison: monitor=%s", m.ID)
		s.recordSuccess(ctx, m)
		return
	}

	changes := s.detector.Detect(prev, curr)
	if len(changes) == 0 {
		s.recordSuccess(ctx, m)
		return
	}

	alert := s.scorer.Score(ctx, changes, m)
	if alert == nil {
		// threshold 미만: Change는 버려짐 (이월 없음)
		log.Printf("Changes below threshold, discarded: monitor=%s, changes=%d", m.ID, len(changes))
		s.recordSuccess(ctx, m)
		return
	}

	if err := s.db.InsertAlert(ctx, alert); err != nil {
		s.recordFailure(ctx, m, fmt.Errorf("failed to save alert: %w", err))
		return
	}

	log.Printf("Alert created: id=%s, monitor=%s, confidence=%.2f, changes=%d",
		alert.ID, m.ID, alert.AggregateConfidence, len(alert.Changes))
	s.dispatcher.Dispatch(ctx, alert, m.Config.Channels)

	s.recordSuccess(ctx, m)
}

func (s *Scheduler) recordSuccess(ctx context.Context, m *model.Monitor) {
	if err := s.db.RecordCheckSuccess(ctx, m.ID); err != nil {
		log.Printf("Failed to record check success: monitor=%s, error=%v", m.ID, err)
	}
}

// recordFailure - 연속 실패 카운터 증가, ceiling 도달 시 error 상태로 자동 전환
func (s *Scheduler) recordFailure(ctx context.Context, m *model.Monitor, checkErr error) {
	log.Printf("Monitor check failed: id=%s, error=%v", m.ID, checkErr)

	failures, err := s.db.RecordCheckFailure(ctx, m.ID, checkErr.Error(), s.cfg.FailureCeiling)
	if err != nil {
		log.Printf("Failed to record check failure: monitor=%s, error=%v", m.ID, err)
		return
	}
	if failures >= s.cfg.FailureCeiling {
		log.Printf("Monitor auto-paused after %d consecutive failures: id=%s", failures, m.ID)
	}
}
