package service

import (
	"context"
	"testing"

	"github.com/bizradar/backend/internal/model"
)

// fakeChannelStore - channelStore 인터페이스 테스트 구현
type fakeChannelStore struct {
	configs map[string]model.ChannelConfig
}

func (f *fakeChannelStore) UpsertChannelConfig(ctx context.Context, cfg model.ChannelConfig) error {
	if f.configs == nil {
		f.configs = make(map[string]model.ChannelConfig)
	}
	f.configs[cfg.Name] = cfg
	return nil
}

func (f *fakeChannelStore) GetChannelConfigs(ctx context.Context) ([]model.ChannelConfig, error) {
	var out []model.ChannelConfig
	for _, cfg := range f.configs {
		out = append(out, cfg)
	}
	return out, nil
}

func TestChannelUpsertValidation(t *testing.T) {
	store := &fakeChannelStore{}
	svc := NewChannelService(store)
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     model.ChannelConfig
		wantErr bool
	}{
		{"valid slack", model.ChannelConfig{Name: "team-slack", Kind: "slack", Destination: "C012345"}, false},
		{"valid webhook", model.ChannelConfig{Name: "ops-hook", Kind: "webhook", Destination: "https://hooks.example.com/x"}, false},
		{"unknown kind", model.ChannelConfig{Name: "pager", Kind: "sms", Destination: "+82010"}, true},
		{"missing name", model.ChannelConfig{Kind: "slack", Destination: "C012345"}, true},
		{"missing destination", model.ChannelConfig{Name: "team-slack", Kind: "slack"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Upsert(ctx, tt.cfg)
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}

	if _, ok := store.configs["pager"]; ok {
		t.Error("invalid channel must not be stored")
	}
}
