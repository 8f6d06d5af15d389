// 전송 채널 설정 비즈니스 로직 정의
// Monitor 설정의 채널 이름이 여기 등록된 설정으로 해석됨

package service

import (
	"context"
	"fmt"

	"github.com/bizradar/backend/internal/model"
)

// channelStore - 채널 설정 영속화 인터페이스 (service 전용)
type channelStore interface {
	UpsertChannelConfig(ctx context.Context, cfg model.ChannelConfig) error
	GetChannelConfigs(ctx context.Context) ([]model.ChannelConfig, error)
}

// ChannelService 구조체 정의
type ChannelService struct {
	db channelStore
}

// ChannelService 객체 생성
func NewChannelService(db channelStore) *ChannelService {
	return &ChannelService{db: db}
}

// Upsert - 채널 설정 등록/갱신
// kind는 등록된 어댑터 종류만 허용
func (s *ChannelService) Upsert(ctx context.Context, cfg model.ChannelConfig) error {
	if cfg.Name == "" {
		return fmt.Errorf("channel name is required")
	}
	switch cfg.Kind {
	case "slack", "webhook", "email":
	default:
		return fmt.Errorf("unknown channel kind: %q (expected slack, webhook or email)", cfg.Kind)
	}
	if cfg.Destination == "" {
		return fmt.Errorf("channel destination is required")
	}
	return s.db.UpsertChannelConfig(ctx, cfg)
}

func (s *ChannelService) List(ctx context.Context) ([]model.ChannelConfig, error) {
	return s.db.GetChannelConfigs(ctx)
}
