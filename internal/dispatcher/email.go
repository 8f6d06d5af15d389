// 이메일 채널 어댑터 - SMTP 전송

package dispatcher

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/bizradar/backend/internal/config"
	"github.com/bizradar/backend/internal/model"
)

// sendMailFunc - 테스트에서 SMTP 호출을 대체하기 위한 함수 타입
type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailChannel 구조체 정의
type EmailChannel struct {
	cfg      config.EmailConfig
	sendMail sendMailFunc
}

func NewEmailChannel(cfg config.EmailConfig) *EmailChannel {
	return &EmailChannel{cfg: cfg, sendMail: smtp.SendMail}
}

func (e *EmailChannel) Name() string { return "email" }

// Send - destination은 수신자 이메일 주소
func (e *EmailChannel) Send(ctx context.Context, alert *model.Alert, destination string) error {
	if !strings.Contains(destination, "@") {
		return fmt.Errorf("invalid email address: %s", destination)
	}
	if e.cfg.From == "" {
		return fmt.Errorf("SMTP sender not configured")
	}

	subject := fmt.Sprintf("[bizradar] %s: %d change(s) detected", alert.EntityID, len(alert.Changes))

	var body strings.Builder
	fmt.Fprintf(&body, "Aggregate confidence: %.0f%%\r\n\r\n", alert.AggregateConfidence*100)
	for _, c := range alert.Changes {
		fmt.Fprintf(&body, "- [%s] %s\r\n", c.Dimension, c.Description)
	}

	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\n\r\n%s\r\n", destination, subject, body.String()))
	auth := smtp.PlainAuth("", e.cfg.From, e.cfg.Password, e.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%s", e.cfg.SMTPHost, e.cfg.SMTPPort)
	return e.sendMail(addr, auth, e.cfg.From, []string{destination}, msg)
}
