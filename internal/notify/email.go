package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"pharma-scanner/internal/domain"
	"pharma-scanner/internal/query"
)

// Mailer 收件人+标题+正文，发出去。测试里用假实现。
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer 用 gomail 走 SMTP。
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, user, password, from string) *SMTPMailer {
	return &SMTPMailer{dialer: gomail.NewDialer(host, port, user, password), from: from}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return m.dialer.DialAndSend(msg)
}

// ExpiryNotifier 周期扫描各用户库存，给开了通知的用户发临期摘要邮件。
// 单实例部署，不做分布式去重。
type ExpiryNotifier struct {
	users    domain.UserRepository
	products domain.ProductRepository
	settings domain.SettingsRepository
	mailer   Mailer
	log      *zap.Logger
}

func NewExpiryNotifier(users domain.UserRepository, products domain.ProductRepository, settings domain.SettingsRepository, mailer Mailer, log *zap.Logger) *ExpiryNotifier {
	return &ExpiryNotifier{users: users, products: products, settings: settings, mailer: mailer, log: log}
}

// Start 阻塞跑周期任务，ctx 取消时退出。启动后先跑一轮再进入节奏。
func (n *ExpiryNotifier) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	n.RunOnce(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.RunOnce(ctx)
		}
	}
}

// RunOnce 扫一遍全部用户。单个用户出错记日志继续，不中断整轮。
func (n *ExpiryNotifier) RunOnce(ctx context.Context) {
	const pageSize = 200
	now := time.Now()
	for offset := 0; ; offset += pageSize {
		users, _, err := n.users.List(ctx, offset, pageSize, "")
		if err != nil {
			n.log.Error("expiry digest: list users", zap.Error(err))
			return
		}
		if len(users) == 0 {
			return
		}
		for i := range users {
			if err := n.notifyUser(ctx, &users[i], now); err != nil {
				n.log.Warn("expiry digest: user skipped",
					zap.Uint("user_id", users[i].ID), zap.Error(err))
			}
		}
		if len(users) < pageSize {
			return
		}
	}
}

func (n *ExpiryNotifier) notifyUser(ctx context.Context, u *domain.User, now time.Time) error {
	st, err := n.settings.Get(ctx, u.ID)
	if err != nil {
		return err
	}
	if !st.Notifications {
		return nil
	}
	products, err := n.products.ListByUser(ctx, u.ID)
	if err != nil {
		return err
	}
	expiring := query.Summarize(products, now).ExpiringSoon
	if len(expiring) == 0 {
		return nil
	}
	subject, body := buildDigest(u.Username, expiring, st.Language)
	if err := n.mailer.Send(u.Email, subject, body); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	n.log.Info("expiry digest sent",
		zap.Uint("user_id", u.ID), zap.Int("expiring", len(expiring)))
	return nil
}

// buildDigest 拼纯文本摘要，按用户设置的语言出 fr/en 两版。
func buildDigest(username string, expiring []query.ExpiringProduct, lang string) (subject, body string) {
	var b strings.Builder
	if lang == "en" {
		subject = fmt.Sprintf("%d product(s) expiring soon", len(expiring))
		fmt.Fprintf(&b, "Hello %s,\n\nThe following products expire within 30 days:\n\n", username)
		for _, e := range expiring {
			fmt.Fprintf(&b, "  - %s: %d day(s) left\n", e.Name, e.DaysLeft)
		}
	} else {
		subject = fmt.Sprintf("%d produit(s) expirent bientôt", len(expiring))
		fmt.Fprintf(&b, "Bonjour %s,\n\nLes produits suivants expirent sous 30 jours :\n\n", username)
		for _, e := range expiring {
			fmt.Fprintf(&b, "  - %s : %d jour(s) restant(s)\n", e.Name, e.DaysLeft)
		}
	}
	return subject, b.String()
}
