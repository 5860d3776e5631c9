package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/wneessen/go-mail"

	"instadm/internal/interfaces"
)

// TelegramNotifier posts operator notifications to a single Telegram chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier validates the bot token against the Telegram API.
func NewTelegramNotifier(token string, chatID int64, timeout time.Duration) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("invalid telegram token: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

// BotName returns the bot's username.
func (t *TelegramNotifier) BotName() string {
	return t.bot.Self.UserName
}

func (t *TelegramNotifier) Notify(ctx context.Context, n interfaces.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// Plain text: company names and notes are user supplied.
	msg := tgbotapi.NewMessage(t.chatID, telegramText(n))
	msg.DisableWebPagePreview = true
	_, err := t.bot.Send(msg)
	return err
}

func telegramText(n interfaces.Notification) string {
	return n.Subject + "\n\n" + n.Body
}

// SMTPSettings configures EmailNotifier.
type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// EmailNotifier mails operator notifications over SMTP.
type EmailNotifier struct {
	settings SMTPSettings
}

func NewEmailNotifier(s SMTPSettings) (*EmailNotifier, error) {
	if s.Host == "" || s.To == "" {
		return nil, errors.New("smtp host and recipient are required")
	}
	if s.From == "" {
		return nil, errors.New("smtp sender address is required")
	}
	return &EmailNotifier{settings: s}, nil
}

func (e *EmailNotifier) message(n interfaces.Notification) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(e.settings.From); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := m.To(e.settings.To); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	m.Subject(n.Subject)
	m.SetBodyString(mail.TypeTextPlain, n.Body)
	return m, nil
}

func (e *EmailNotifier) Notify(ctx context.Context, n interfaces.Notification) error {
	m, err := e.message(n)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(e.settings.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if e.settings.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(e.settings.Username),
			mail.WithPassword(e.settings.Password),
		)
	}

	client, err := mail.NewClient(e.settings.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

// MultiNotifier fans a notification out to every channel and joins the
// errors.
type MultiNotifier []interfaces.Notifier

func (m MultiNotifier) Notify(ctx context.Context, n interfaces.Notification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
