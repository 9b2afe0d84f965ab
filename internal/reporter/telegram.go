package reporter

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/DillanDevs/linkedin-scraping/internal/apperr"
	"github.com/DillanDevs/linkedin-scraping/internal/config"
	"github.com/DillanDevs/linkedin-scraping/internal/pipeline"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramReporter posts a summary of every pipeline run to one chat.
type TelegramReporter struct {
	bot    sender
	chatID int64
}

func NewTelegramReporter(cfg config.TelegramConfig) (*TelegramReporter, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &TelegramReporter{bot: bot, chatID: cfg.ChatID}, nil
}

func (t *TelegramReporter) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := t.bot.Send(msg)
	return err
}

func (t *TelegramReporter) NotifyRun(_ context.Context, r *pipeline.Report) error {
	return t.SendMessage(FormatReport(r))
}

// FormatReport renders a run as a Telegram HTML message.
func FormatReport(r *pipeline.Report) string {
	var b strings.Builder
	if r.Err != nil {
		fmt.Fprintf(&b, "⚠️ <b>Scrape failed</b> for <i>%s</i>\n", html.EscapeString(r.Keyword))
		fmt.Fprintf(&b, "🧭 Stage: %s\n", r.FailedIn)
		if kind := apperr.KindOf(r.Err); kind != "" {
			fmt.Fprintf(&b, "🏷 Kind: %s\n", kind)
		}
		fmt.Fprintf(&b, "💥 %s\n", html.EscapeString(r.Err.Error()))
	} else {
		fmt.Fprintf(&b, "✅ <b>Scrape finished</b> for <i>%s</i>\n", html.EscapeString(r.Keyword))
		fmt.Fprintf(&b, "📦 Collected: %d\n", r.Collected)
		fmt.Fprintf(&b, "👥 With applicants: %d\n", r.WithApplicants)
		fmt.Fprintf(&b, "💾 Persisted: %d\n", r.Persisted)
	}
	fmt.Fprintf(&b, "⏱ %s", r.Duration().Round(time.Second))
	return b.String()
}
