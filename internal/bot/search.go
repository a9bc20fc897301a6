package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"lookup_bot/internal/ledger"
	"lookup_bot/internal/lookup"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const lowCreditThreshold = 2

func (b *Bot) handleSearch(ctx context.Context, msg *tgbotapi.Message, number string) {
	userID := msg.From.ID

	if err := b.ledger.Touch(ctx, userID); err != nil {
		b.log.Error("user registration failed", "user_id", userID, "error", err)
	}

	auth, err := b.access.Authorize(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrBanned):
			b.reply(msg.Chat.ID, bannedText)
		case errors.Is(err, ledger.ErrNotMember):
			b.replyMarkup(msg.Chat.ID, joinChannelText(), b.joinChannelKeyboard())
		case errors.Is(err, ledger.ErrNoCredit):
			b.replyMarkup(msg.Chat.ID, b.noCreditText(), b.noCreditKeyboard())
		default:
			b.log.Error("authorize failed", "user_id", userID, "error", err)
			b.reply(msg.Chat.ID, "❌ <b>Unexpected error!</b>\n\nSomething went wrong. Please try again later.")
		}
		return
	}

	costNote := " (costs 1 credit)"
	if auth.Unlimited() {
		costNote = ""
	}
	status := tgbotapi.NewMessage(msg.Chat.ID, fmt.Sprintf(
		"🔍 <b>Searching...</b>\n📱 Number: <code>%s</code>%s\n\n⏳ Please wait...",
		number, costNote))
	status.ParseMode = tgbotapi.ModeHTML
	sent, err := b.bot.Send(status)
	if err != nil {
		b.log.Error("send failed", "chat_id", msg.Chat.ID, "error", err)
	}

	result, err := b.lookup.Lookup(ctx, number)
	if err != nil {
		if refundErr := auth.Refund(ctx); refundErr != nil {
			b.log.Error("refund failed", "user_id", userID, "error", refundErr)
		}

		switch {
		case errors.Is(err, lookup.ErrTimeout):
			b.edit(msg.Chat.ID, sent.MessageID,
				"⏰ <b>Timeout!</b>\n\n"+
					"The service did not respond. Please try again in a while.\n"+
					"Your credit has been refunded.", nil)
		default:
			b.log.Error("lookup failed", "number", number, "error", err)
			b.edit(msg.Chat.ID, sent.MessageID,
				"🛑 <b>Service problem!</b>\n\n"+
					"Could not reach the external service.\n"+
					"Please try again later.\n\n"+
					"Your credit has been refunded. ✅", nil)
		}
		return
	}

	// An empty result still consumed a completed call.
	if err := auth.Commit(ctx, number); err != nil {
		b.log.Error("commit failed", "user_id", userID, "error", err)
	}

	remaining := b.creditText(ctx, userID)

	if !result.Found {
		b.edit(msg.Chat.ID, sent.MessageID, fmt.Sprintf(
			"❌ <b>No details found</b>\n\n"+
				"📱 Number: <code>%s</code>\n"+
				"No information is available for this number.\n\n"+
				"💰 <b>Credits left:</b> %s",
			number, remaining), nil)
		return
	}

	var sb strings.Builder
	sb.WriteString("✅ <b>Details found!</b> 🎉\n\n📋 <b>Details:</b>\n")
	for _, key := range result.Keys() {
		sb.WriteString(fmt.Sprintf("%s <b>%s:</b> <code>%s</code>\n",
			fieldEmoji(key), html.EscapeString(prettyKey(key)), html.EscapeString(result.Fields[key])))
	}
	sb.WriteString(fmt.Sprintf("\n💰 <b>Credits left:</b> %s", remaining))

	if !auth.Unlimited() {
		if balance, _, _ := b.ledger.Balance(ctx, userID); balance <= lowCreditThreshold {
			sb.WriteString(fmt.Sprintf(
				"\n\n⚠️ <b>Low credits!</b> Refer friends and earn %d credits!",
				b.cfg.ReferralCredits))
		}
	}

	b.edit(msg.Chat.ID, sent.MessageID, sb.String(), nil)
}

func fieldEmoji(key string) string {
	k := strings.ToLower(key)
	switch {
	case strings.Contains(k, "name"):
		return "👤"
	case strings.Contains(k, "mobile"), strings.Contains(k, "phone"):
		return "📱"
	case strings.Contains(k, "email"):
		return "📧"
	case strings.Contains(k, "address"):
		return "🏠"
	case strings.Contains(k, "state"):
		return "🗺️"
	case strings.Contains(k, "city"):
		return "🏙️"
	}
	return "📌"
}

// prettyKey turns a raw field name like "father_name" into
// "Father Name".
func prettyKey(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
