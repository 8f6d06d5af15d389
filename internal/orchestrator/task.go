// Task Unit 계약 및 Executor 정의
//
// Executor가 보장하는 것:
//  1. 타임아웃은 {status: timed_out, payload: null}로 변환 (cancellation 전파 금지)
//  2. 그 외 실패(에러, panic)는 전부 {status: failed, payload: null, error: ...}로 변환
//  3. 어떤 Task의 실패도 같은 Phase의 다른 Task나 Phase 자체를 중단시키지 않음

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bizradar/backend/internal/model"
)

// Input - Task에 전달되는 입력
// Facets에는 이전 Phase까지 해소된 전체 결과가 담김 (Phase 1 Task는 무시)
type Input struct {
	EntityID string
	Facets   map[model.FacetKind]model.TaskResult
}

// Task - 원격 데이터 수집 작업 한 단위
type Task interface {
	Name() string
	Facet() model.FacetKind
	Run(ctx context.Context, in Input) (model.FacetPayload, error)
}

// Executor - Task 호출을 TaskResult 형태로 감싸는 래퍼
type Executor struct{}

func NewExecutor() *Executor {
	return &Executor{}
}

type taskOutcome struct {
	payload model.FacetPayload
	err     error
}

// Execute - Task 하나를 timeout 경계 내에서 실행
// 절대 에러를 반환하지 않고 항상 TaskResult로 수렴
func (e *Executor) Execute(ctx context.Context, task Task, in Input, timeout time.Duration) model.TaskResult {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// 버퍼 1: Executor가 타임아웃으로 먼저 리턴해도 goroutine이 누수되지 않음
	done := make(chan taskOutcome, 1)
	start := time.Now()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- taskOutcome{err: fmt.Errorf("task panicked: %v", r)}
			}
		}()
		payload, err := task.Run(runCtx, in)
		done <- taskOutcome{payload: payload, err: err}
	}()

	select {
	case <-runCtx.Done():
		log.Printf("Task timed out: name=%s, entity=%s, timeout=%s", task.Name(), in.EntityID, timeout)
		return model.TaskResult{Status: model.StatusTimedOut}
	case out := <-done:
		if out.err != nil {
			if errors.Is(out.err, context.DeadlineExceeded) {
				log.Printf("Task timed out: name=%s, entity=%s, elapsed=%s", task.Name(), in.EntityID, time.Since(start))
				return model.TaskResult{Status: model.StatusTimedOut}
			}
			log.Printf("Task failed: name=%s, entity=%s, error=%v", task.Name(), in.EntityID, out.err)
			return model.TaskResult{Status: model.StatusFailed, Error: out.err.Error()}
		}
		return model.TaskResult{Status: model.StatusSuccess, Payload: out.payload}
	}
}
