package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const bannedText = "🚫 <b>You are banned from using this bot.</b>\n\n" +
	"Contact the support channel for more information."

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID

	if b.ledger.IsBanned(userID) {
		b.reply(msg.Chat.ID, bannedText)
		return
	}

	if err := b.ledger.Touch(ctx, userID); err != nil {
		b.log.Error("user registration failed", "user_id", userID, "error", err)
	}

	if !b.ensureMember(ctx, userID, msg.Chat.ID) {
		return
	}

	if referrerID, ok := parseStartReferral(msg.CommandArguments()); ok {
		if b.applyReferral(ctx, referrerID, msg.From) {
			b.reply(msg.Chat.ID, fmt.Sprintf(
				"✅ <b>Welcome!</b> 🎊\n\n"+
					"You started the bot through a referral link.\n"+
					"You received <b>%d</b> starting credits. 🎁",
				b.cfg.DailyCredits))
			return
		}
	}

	b.replyMarkup(msg.Chat.ID,
		b.mainMenuText(ctx, userID, msg.From.FirstName),
		b.mainMenuKeyboard(ctx, userID))
}

// ensureMember enforces the channel gate for regular users. The admin
// and active unlimited users skip it, as does everyone when no support
// channel is configured.
func (b *Bot) ensureMember(ctx context.Context, userID, chatID int64) bool {
	if b.member == nil || b.isAdmin(userID) || b.ledger.IsUnlimited(ctx, userID) {
		return true
	}

	ok, err := b.member.IsMember(ctx, userID)
	if err == nil && ok {
		return true
	}

	b.replyMarkup(chatID, joinChannelText(), b.joinChannelKeyboard())
	return false
}

// parseStartReferral extracts the referrer id from a "ref_<id>" start
// token.
func parseStartReferral(args string) (int64, bool) {
	args = strings.TrimSpace(args)
	if !strings.HasPrefix(args, "ref_") {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(args, "ref_"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// applyReferral records the edge and, when the reward was granted,
// congratulates the referrer. The notification is best effort.
func (b *Bot) applyReferral(ctx context.Context, referrerID int64, referee *tgbotapi.User) bool {
	granted, err := b.ledger.RecordReferral(ctx, referrerID, referee.ID)
	if err != nil {
		b.log.Error("referral failed", "referrer_id", referrerID, "referee_id", referee.ID, "error", err)
		return false
	}
	if !granted {
		return false
	}

	name := referee.FirstName
	if name == "" {
		name = "A friend"
	}
	b.notify(referrerID, fmt.Sprintf(
		"🥳 <b>Congratulations!</b> 🎉\n\n"+
			"👤 <b>%s</b> started the bot through your referral link.\n"+
			"🎁 You earned <b>%d credits</b>!\n"+
			"💰 <b>Your total credits:</b> %s",
		name, b.cfg.ReferralCredits, b.creditText(ctx, referrerID)))
	return true
}
