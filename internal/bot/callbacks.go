package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleCallback(q *tgbotapi.CallbackQuery) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if q.Message == nil {
		return
	}

	userID := q.From.ID
	chatID := q.Message.Chat.ID
	messageID := q.Message.MessageID

	if err := b.ledger.Touch(ctx, userID); err != nil {
		b.log.Error("user registration failed", "user_id", userID, "error", err)
	}

	if q.Data == cbCheckMembership {
		b.handleMembershipCheck(ctx, q)
		return
	}

	b.answer(q.ID, "")

	if !b.ensureMember(ctx, userID, chatID) {
		return
	}

	if b.ledger.IsBanned(userID) && q.Data != cbMainMenu {
		b.answerAlert(q.ID, "🚫 You are banned.")
		return
	}

	switch q.Data {
	case cbShowCredits:
		b.showCredits(ctx, userID, chatID, messageID)
	case cbReferralLink:
		b.showReferralLink(ctx, userID, chatID, messageID)
	case cbMyReferrals:
		b.showMyReferrals(userID, chatID, messageID)
	case cbSearchHistory:
		b.showSearchHistory(userID, chatID, messageID)
	case cbClearHistory:
		if err := b.ledger.ClearHistory(ctx, userID); err != nil {
			b.log.Error("clear history failed", "user_id", userID, "error", err)
		}
		markup := backToMenuKeyboard()
		b.edit(chatID, messageID, "✅ <b>History cleared!</b>", &markup)
	case cbHowToSearch:
		markup := backToMenuKeyboard()
		b.edit(chatID, messageID, howToSearchText(), &markup)
	case cbHelp:
		markup := backToMenuKeyboard()
		b.edit(chatID, messageID, helpText(b.cfg), &markup)
	case cbBuyCredits:
		markup := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonURL("📢 Contact support", b.cfg.SupportChannelLink),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🔙 Back", cbShowCredits),
			),
		)
		b.edit(chatID, messageID, b.buyCreditsText(), &markup)
	case cbMainMenu:
		markup := b.mainMenuKeyboard(ctx, userID)
		b.edit(chatID, messageID, b.mainMenuText(ctx, userID, q.From.FirstName), &markup)

	case cbAdminStats:
		if b.isAdmin(userID) {
			b.handleAdminStats(chatID, messageID)
		}
	case cbAdminTopUsers:
		if b.isAdmin(userID) {
			b.showTopReferrers(chatID, messageID)
		}
	case cbAdminUnlimited:
		if b.isAdmin(userID) {
			b.showUnlimitedList(chatID, messageID)
		}
	case cbAdminBanned:
		if b.isAdmin(userID) {
			b.showBannedList(chatID, messageID)
		}
	}
}

func (b *Bot) handleMembershipCheck(ctx context.Context, q *tgbotapi.CallbackQuery) {
	userID := q.From.ID

	if b.member != nil {
		ok, err := b.member.IsMember(ctx, userID)
		if err != nil || !ok {
			b.answerAlert(q.ID, "❌ You are still not a channel member! Please join first.")
			return
		}
	}

	b.answer(q.ID, "")
	markup := backToMenuKeyboard()
	b.edit(q.Message.Chat.ID, q.Message.MessageID,
		"✅ <b>Thank you!</b> 🎉\n\n"+
			"You joined the channel.\n\n"+
			"You can now use the bot fully!\n\n"+
			"<b>To search:</b>\n"+
			"<code>/search &lt;number&gt;</code>\n"+
			"<b>or send the number directly</b>",
		&markup)
}

func (b *Bot) showCredits(ctx context.Context, userID, chatID int64, messageID int) {
	credit := b.creditText(ctx, userID)
	unlimited := b.ledger.IsUnlimited(ctx, userID) || b.isAdmin(userID)
	referralCount := b.ledger.ReferralCount(userID)

	expiry := ""
	if unlimited {
		expiry = b.expiryLine(userID)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(
		"💰 <b>Your credits:</b> %s%s\n"+
			"🔗 <b>Your referrals:</b> %d\n"+
			"🎁 <b>Per referral:</b> +%d credits\n\n",
		credit, expiry, referralCount, b.cfg.ReferralCredits))

	if !unlimited {
		balance, _, _ := b.ledger.Balance(ctx, userID)
		switch {
		case balance <= 0:
			sb.WriteString("⚠️ <b>Out of credits!</b> Refer now and earn credits!")
		case balance <= lowCreditThreshold:
			sb.WriteString("⚠️ <b>Low on credits!</b> Refer soon.")
		default:
			sb.WriteString(fmt.Sprintf("✅ You can search <b>%d more times</b>.", balance))
		}
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🎁 Earn %d credits", b.cfg.ReferralCredits), cbReferralLink),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Referral status", cbMyReferrals),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Main menu", cbMainMenu),
		),
	)
	b.edit(chatID, messageID, sb.String(), &markup)
}

func (b *Bot) showReferralLink(ctx context.Context, userID, chatID int64, messageID int) {
	link := b.referralLink(userID)
	referralCount := b.ledger.ReferralCount(userID)
	earned := int64(referralCount) * b.cfg.ReferralCredits

	text := fmt.Sprintf(
		"🔗 <b>Your referral link:</b>\n"+
			"<code>%s</code>\n\n"+
			"📋 <b>How it works:</b>\n"+
			"1️⃣ Copy the link above\n"+
			"2️⃣ Send it to friends on WhatsApp/Telegram\n"+
			"3️⃣ Earn %d credits when they join\n\n"+
			"📊 <b>Your referral stats:</b>\n"+
			"👥 <b>Total referrals:</b> %d\n"+
			"💰 <b>Credits earned:</b> %d\n"+
			"💎 <b>Current credits:</b> %s",
		link, b.cfg.ReferralCredits, referralCount, earned, b.creditText(ctx, userID))

	markup := b.shareKeyboard(userID)
	b.edit(chatID, messageID, text, &markup)
}

func (b *Bot) showMyReferrals(userID, chatID int64, messageID int) {
	referralCount := b.ledger.ReferralCount(userID)
	earned := int64(referralCount) * b.cfg.ReferralCredits

	rankText := "N/A"
	if rank := b.ledger.ReferralRank(userID); rank > 0 {
		rankText = fmt.Sprintf("#%d", rank)
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎁 Get referral link", cbReferralLink),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Main menu", cbMainMenu),
		),
	)

	b.edit(chatID, messageID, fmt.Sprintf(
		"📊 <b>Your referral statistics</b>\n\n"+
			"👥 <b>Total referrals:</b> %d\n"+
			"💰 <b>Total credits earned:</b> %d\n"+
			"🎁 <b>Per referral:</b> %d credits\n"+
			"🏆 <b>Your rank:</b> %s\n\n"+
			"💡 <b>Tip:</b> the more you refer, the more credits you earn!\n"+
			"No limit! 🚀",
		referralCount, earned, b.cfg.ReferralCredits, rankText), &markup)
}

func (b *Bot) showSearchHistory(userID, chatID int64, messageID int) {
	history := b.ledger.RecentSearches(userID, 10)
	if len(history) == 0 {
		markup := backToMenuKeyboard()
		b.edit(chatID, messageID,
			"📜 <b>Search history is empty</b>\n\n"+
				"You have not searched anything yet.\n\n"+
				"To search:\n"+
				"<code>/search &lt;number&gt;</code>",
			&markup)
		return
	}

	var sb strings.Builder
	sb.WriteString("📜 <b>Your last 10 searches:</b>\n\n")
	for i, rec := range history {
		sb.WriteString(fmt.Sprintf("%d. <code>%s</code> - %s\n",
			i+1, rec.Number, rec.Timestamp.Format("02-01-2006 15:04")))
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑️ Clear history", cbClearHistory),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Main menu", cbMainMenu),
		),
	)
	b.edit(chatID, messageID, sb.String(), &markup)
}

func (b *Bot) answer(callbackID, text string) {
	if _, err := b.bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.log.Debug("callback answer failed", "error", err)
	}
}

func (b *Bot) answerAlert(callbackID, text string) {
	if _, err := b.bot.Request(tgbotapi.NewCallbackWithAlert(callbackID, text)); err != nil {
		b.log.Debug("callback answer failed", "error", err)
	}
}
