package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/relnote/pkg/domain/types"
	"github.com/secmon-lab/relnote/pkg/infra/telegram"
)

type Telegram struct {
	botToken        types.TelegramBotToken `masq:"secret"`
	chatID          types.ChatID
	maxChangelogLen int64
}

func (x *Telegram) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "telegram-bot-token",
			Usage:       "Telegram bot token",
			Category:    "Telegram",
			Destination: (*string)(&x.botToken),
			Sources:     cli.EnvVars("RELNOTE_TELEGRAM_BOT_TOKEN"),
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "telegram-chat-id",
			Usage:       "Default destination chat ID",
			Category:    "Telegram",
			Destination: (*string)(&x.chatID),
			Sources:     cli.EnvVars("RELNOTE_TELEGRAM_CHAT_ID"),
			Required:    true,
		},
		&cli.Int64Flag{
			Name:        "max-changelog-length",
			Usage:       "Changelog is truncated beyond this many characters",
			Category:    "Telegram",
			Destination: &x.maxChangelogLen,
			Sources:     cli.EnvVars("RELNOTE_MAX_CHANGELOG_LENGTH"),
			Value:       3500,
		},
	}
}

func (x Telegram) NewClient() (*telegram.Client, error) {
	return telegram.New(x.botToken)
}

func (x Telegram) DefaultChat() types.ChatID {
	return x.chatID
}

func (x Telegram) MaxChangelogLen() int {
	return int(x.maxChangelogLen)
}

func (x Telegram) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("botToken.len", len(x.botToken)),
		slog.String("chatID", string(x.chatID)),
		slog.Int64("maxChangelogLen", x.maxChangelogLen),
	)
}
