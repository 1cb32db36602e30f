// Package mail 发送邮箱验证码
// 配置了 Mailgun 域名与密钥时通过 Mailgun 发送，否则只把验证码写入日志，便于本机跑通注册链路
package mail

import (
	"context"
	"fmt"
	"time"

	"campus_lostfound/internal/config"
	"campus_lostfound/pkg/errorx"

	"github.com/mailgun/mailgun-go/v5"
	"go.uber.org/zap"
)

// sendTimeout 单封邮件的发送时限
const sendTimeout = 10 * time.Second

// CodeSender 验证码发送接口
// Service 层依赖此接口而非具体实现
type CodeSender interface {
	// SendVerificationCode 向 email 发送 6 位验证码
	SendVerificationCode(ctx context.Context, email, username, code string) error
}

// Init 按配置选择实现
func Init(conf *config.MailConfig) CodeSender {
	if conf.Domain == "" || conf.APIKey == "" {
		zap.L().Warn("mail not configured, verification codes are only logged")
		return &logSender{}
	}
	return &mailgunSender{
		client: mailgun.NewMailgun(conf.APIKey),
		domain: conf.Domain,
		from:   fmt.Sprintf("%s <%s>", conf.SenderName, conf.SenderEmail),
	}
}

type mailgunSender struct {
	client mailgun.Mailgun
	domain string
	from   string
}

func (s *mailgunSender) SendVerificationCode(ctx context.Context, email, username, code string) error {
	message := mailgun.NewMessage(
		s.domain,
		s.from,
		"Your Campus Lost & Found verification code",
		codeText(username, code),
		email,
	)
	message.SetHTML(codeHTML(username, code))

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	resp, err := s.client.Send(ctx, message)
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeServerBusy, "send verification code to %s", email)
	}
	zap.L().Info("verification code sent", zap.String("email", email), zap.Any("response", resp))
	return nil
}

// logSender 开发模式下的 mock 实现
type logSender struct{}

func (logSender) SendVerificationCode(_ context.Context, email, username, code string) error {
	zap.L().Info("[MockMail] verification code",
		zap.String("email", email),
		zap.String("username", username),
		zap.String("code", code),
	)
	return nil
}

func codeText(username, code string) string {
	return fmt.Sprintf("Hi %s,\n\nYour verification code is %s. It expires in 15 minutes.\n", username, code)
}

func codeHTML(username, code string) string {
	return fmt.Sprintf(`<p>Hi %s,</p><p>Your verification code is <strong>%s</strong>. It expires in 15 minutes.</p>`, username, code)
}

var (
	_ CodeSender = (*mailgunSender)(nil)
	_ CodeSender = logSender{}
)
