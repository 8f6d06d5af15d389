// Alert Dispatcher - 채널별 독립 전송 + 실패 기록/재시도
//
// 처리 흐름:
//  1. Monitor 설정의 채널 이름으로 channel_configs에서 목적지 조회
//  2. 어댑터(kind)별 Channel.Send 호출 - 채널 하나의 실패가 다른 채널을 막지 않음
//  3. 실패는 alert_deliveries에 기록하고 Scheduler tick에서 bounded backoff 재시도
//     (Scheduler 루프를 inline으로 블로킹하지 않음)

package dispatcher

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/bizradar/backend/internal/model"
)

// Channel - 채널 어댑터 공통 계약
type Channel interface {
	Name() string
	Send(ctx context.Context, alert *model.Alert, destination string) error
}

// channelConfigReader - 채널 설정 조회용 DB 인터페이스 (dispatcher 전용)
type channelConfigReader interface {
	GetChannelConfigByName(ctx context.Context, name string) (*model.ChannelConfig, error)
}

// deliveryStore - 전송 기록/재시도용 DB 인터페이스
type deliveryStore interface {
	RecordDelivery(ctx context.Context, alertID, channel, destination string, status model.DeliveryStatus, attempts int, lastError string, nextAttemptAt time.Time) error
	DuePendingDeliveries(ctx context.Context, now time.Time, limit int) ([]model.AlertDelivery, error)
	UpdateDeliveryResult(ctx context.Context, id int64, status model.DeliveryStatus, attempts int, lastError string, nextAttemptAt time.Time) error
	GetAlert(ctx context.Context, id string) (*model.Alert, error)
}

// 재시도 정책: 지수 backoff, 최대 시도 후 failed로 확정
const (
	maxDeliveryAttempts = 5
	baseBackoff         = time.Minute
	retryBatchLimit     = 20
)

// DeliveryResult - 채널 하나의 전송 결과
type DeliveryResult struct {
	Channel string
	Err     error
}

// Dispatcher 구조체 정의
type Dispatcher struct {
	adapters map[string]Channel // kind → 어댑터
	configs  channelConfigReader
	db       deliveryStore
}

// Dispatcher 객체 생성
func New(configs channelConfigReader, db deliveryStore, adapters ...Channel) *Dispatcher {
	byKind := make(map[string]Channel, len(adapters))
	for _, a := range adapters {
		byKind[a.Name()] = a
	}
	return &Dispatcher{adapters: byKind, configs: configs, db: db}
}

// Dispatch - Alert를 설정된 채널 전체로 전송
// 각 채널은 독립적으로 시도되며 실패해도 다른 채널 전송을 막지 않음
func (d *Dispatcher) Dispatch(ctx context.Context, alert *model.Alert, channelNames []string) []DeliveryResult {
	results := make([]DeliveryResult, 0, len(channelNames))

	for _, name := range channelNames {
		err := d.dispatchOne(ctx, alert, name)
		if err != nil {
			log.Printf("Channel delivery failed: alert=%s, channel=%s, error=%v", alert.ID, name, err)
		}
		results = append(results, DeliveryResult{Channel: name, Err: err})
	}
	return results
}

func (d *Dispatcher) dispatchOne(ctx context.Context, alert *model.Alert, name string) error {
	cfg, err := d.configs.GetChannelConfigByName(ctx, name)
	if err != nil {
		return fmt.Errorf("channel config lookup failed: %w", err)
	}

	adapter, ok := d.adapters[cfg.Kind]
	if !ok {
		return fmt.Errorf("no adapter for channel kind %q", cfg.Kind)
	}

	sendErr := adapter.Send(ctx, alert, cfg.Destination)
	d.record(ctx, alert.ID, name, cfg.Destination, sendErr, 1)
	return sendErr
}

// record - 전송 결과 기록 (기록 실패는 로그만 남김)
func (d *Dispatcher) record(ctx context.Context, alertID, channel, destination string, sendErr error, attempts int) {
	status := model.DeliverySent
	lastError := ""
	nextAttempt := time.Time{}

	if sendErr != nil {
		lastError = sendErr.Error()
		if attempts >= maxDeliveryAttempts {
			status = model.DeliveryFailed
		} else {
			status = model.DeliveryPending
			nextAttempt = time.Now().Add(backoff(attempts))
		}
	}

	if err := d.db.RecordDelivery(ctx, alertID, channel, destination, status, attempts, lastError, nextAttempt); err != nil {
		log.Printf("Failed to record delivery: alert=%s, channel=%s, error=%v", alertID, channel, err)
	}
}

// RetryPending - 재시도 기한이 도래한 실패 전송 재처리 (Scheduler tick에서 호출)
func (d *Dispatcher) RetryPending(ctx context.Context, now time.Time) {
	pending, err := d.db.DuePendingDeliveries(ctx, now, retryBatchLimit)
	if err != nil {
		log.Printf("Failed to load pending deliveries: %v", err)
		return
	}

	for _, delivery := range pending {
		d.retryOne(ctx, delivery)
	}
}

func (d *Dispatcher) retryOne(ctx context.Context, delivery model.AlertDelivery) {
	alert, err := d.db.GetAlert(ctx, delivery.AlertID)
	if err != nil {
		// 조회 실패도 시도 횟수에 포함시켜 무한 재선택을 막음
		log.Printf("Failed to load alert for retry: delivery=%d, error=%v", delivery.ID, err)
		d.finishRetry(ctx, delivery, fmt.Errorf("failed to load alert: %w", err), delivery.Attempts+1)
		return
	}

	adapter, ok := d.adapterForChannel(ctx, delivery.Channel)
	if !ok {
		// 설정이 사라진 채널: 더 재시도하지 않음
		d.finishRetry(ctx, delivery, fmt.Errorf("channel %q no longer configured", delivery.Channel), maxDeliveryAttempts)
		return
	}

	sendErr := adapter.Send(ctx, alert, delivery.Destination)
	d.finishRetry(ctx, delivery, sendErr, delivery.Attempts+1)
}

func (d *Dispatcher) adapterForChannel(ctx context.Context, name string) (Channel, bool) {
	cfg, err := d.configs.GetChannelConfigByName(ctx, name)
	if err != nil {
		return nil, false
	}
	adapter, ok := d.adapters[cfg.Kind]
	return adapter, ok
}

func (d *Dispatcher) finishRetry(ctx context.Context, delivery model.AlertDelivery, sendErr error, attempts int) {
	status := model.DeliverySent
	lastError := ""
	nextAttempt := time.Time{}

	if sendErr != nil {
		lastError = sendErr.Error()
		if attempts >= maxDeliveryAttempts {
			status = model.DeliveryFailed
			log.Printf("Delivery permanently failed: delivery=%d, channel=%s, attempts=%d", delivery.ID, delivery.Channel, attempts)
		} else {
			status = model.DeliveryPending
			nextAttempt = time.Now().Add(backoff(attempts))
		}
	}

	if err := d.db.UpdateDeliveryResult(ctx, delivery.ID, status, attempts, lastError, nextAttempt); err != nil {
		log.Printf("Failed to update delivery result: delivery=%d, error=%v", delivery.ID, err)
	}
}

// backoff - 시도 횟수 기반 지수 backoff (1m, 2m, 4m, 8m ...)
func backoff(attempts int) time.Duration {
	d := baseBackoff
	for i := 1; i < attempts; i++ {
		d *= 2
	}
	return d
}
