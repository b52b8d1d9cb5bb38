package notifier

import (
	"context"
	"strings"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"SignalSentinel/internal/logger"
)

// CommandHandler is called when a user command is received. command has no
// leading slash; args is the rest of the message. An empty reply is not sent.
type CommandHandler func(ctx context.Context, command, args string) string

// StartPolling begins long-polling for Telegram commands from the configured
// chat. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	u.AllowedUpdates = []string{"message"}

	updates := t.bot.GetUpdatesChan(u)
	defer t.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			logger.Infof("telegram polling stopped")
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			msg := upd.Message
			if msg == nil || msg.Chat == nil || msg.Chat.ID != t.chatID || !msg.IsCommand() {
				continue
			}
			args := strings.TrimSpace(msg.CommandArguments())
			logger.Infof("received command: /%s %s", msg.Command(), args)
			reply := handler(ctx, msg.Command(), args)
			if reply == "" {
				continue
			}
			if err := t.Send(reply); err != nil {
				logger.Errorf("send reply: %v", err)
			}
		}
	}
}
