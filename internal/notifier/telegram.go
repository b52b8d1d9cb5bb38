package notifier

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"SignalSentinel/internal/logger"
)

// MaxMessageLen is the Telegram limit for one message text.
const MaxMessageLen = 4096

// retryBase is the first backoff delay of SendWithRetry.
var retryBase = time.Second

// Notifier delivers a formatted message to the operator.
type Notifier interface {
	Send(text string) error
}

// TelegramNotifier sends HTML messages via the Telegram Bot API.
type TelegramNotifier struct {
	bot    *tgbot.BotAPI
	chatID int64
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, chatID, proxyURL string) (*TelegramNotifier, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, errors.Wrapf(err, "parse chat id %q", chatID)
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	client := &http.Client{
		Timeout:   45 * time.Second, // above the 30s long-poll timeout
		Transport: transport,
	}
	bot, err := tgbot.NewBotAPIWithClient(botToken, tgbot.APIEndpoint, client)
	if err != nil {
		return nil, errors.Wrap(err, "init telegram bot")
	}
	logger.Infof("telegram bot authorized as @%s", bot.Self.UserName)
	return &TelegramNotifier{bot: bot, chatID: id}, nil
}

// Send sends text to the configured chat, split into as many messages as needed.
func (t *TelegramNotifier) Send(text string) error {
	for _, part := range Split(text, MaxMessageLen) {
		msg := tgbot.NewMessage(t.chatID, part)
		msg.ParseMode = tgbot.ModeHTML
		msg.DisableWebPagePreview = true
		if _, err := t.bot.Send(msg); err != nil {
			return errors.Wrap(err, "send message")
		}
	}
	return nil
}

// SendWithRetry sends a message with exponential backoff retry.
func SendWithRetry(ctx context.Context, n Notifier, text string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		err := n.Send(text)
		if err == nil {
			return nil
		}
		lastErr = err
		if i == maxRetries {
			break
		}
		backoff := retryBase << uint(i)
		logger.Warnf("send failed (attempt %d/%d): %v, retrying in %v", i+1, maxRetries+1, err, backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return errors.Wrapf(lastErr, "all %d attempts exhausted", maxRetries+1)
}

// Split breaks text into chunks of at most limit bytes, preferring line breaks.
// A single line longer than limit is cut on a rune boundary.
func Split(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}
	var parts []string
	var cur strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > limit {
			if cur.Len() > 0 {
				parts = append(parts, cur.String())
				cur.Reset()
			}
			cut := limit
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			if cut == 0 {
				cut = limit
			}
			parts = append(parts, line[:cut])
			line = line[cut:]
		}
		if cur.Len()+len(line) > limit {
			parts = append(parts, cur.String())
			cur.Reset()
		}
		cur.WriteString(line)
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}

// LogNotifier writes messages to the log when Telegram is not configured.
type LogNotifier struct{}

func (LogNotifier) Send(text string) error {
	logger.Infof("notification:\n%s", text)
	return nil
}
