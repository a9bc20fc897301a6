package bot

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// channelMembership answers the membership gate through getChatMember.
type channelMembership struct {
	bot     *tgbotapi.BotAPI
	channel string
	log     *slog.Logger
}

func (m *channelMembership) IsMember(ctx context.Context, userID int64) (bool, error) {
	member, err := m.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			SuperGroupUsername: "@" + m.channel,
			UserID:             userID,
		},
	})
	if err != nil {
		m.log.Error("membership check failed", "user_id", userID, "error", err)
		return false, err
	}

	switch member.Status {
	case "member", "administrator", "creator":
		return true, nil
	}
	return false, nil
}
