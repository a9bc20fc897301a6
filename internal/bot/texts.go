package bot

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"lookup_bot/internal/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data keys for the inline menus.
const (
	cbCheckMembership = "check_membership"
	cbShowCredits     = "show_credits"
	cbReferralLink    = "get_referral_link"
	cbMyReferrals     = "my_referrals"
	cbSearchHistory   = "search_history"
	cbClearHistory    = "clear_history"
	cbHowToSearch     = "how_to_search"
	cbHelp            = "help"
	cbBuyCredits      = "buy_credits"
	cbMainMenu        = "main_menu"
	cbAdminStats      = "admin_stats"
	cbAdminTopUsers   = "admin_top_users"
	cbAdminUnlimited  = "admin_unlimited_list"
	cbAdminBanned     = "admin_banned_list"
)

const unlimitedText = "Unlimited ♾️"

func (b *Bot) referralLink(userID int64) string {
	return fmt.Sprintf("https://t.me/%s?start=ref_%d", b.username, userID)
}

// creditText renders the balance for display, with the unlimited
// sentinel instead of a number when the user bypasses credits.
func (b *Bot) creditText(ctx context.Context, userID int64) string {
	balance, unlimited, err := b.ledger.Balance(ctx, userID)
	if err != nil {
		b.log.Error("balance read failed", "user_id", userID, "error", err)
	}
	if unlimited {
		return unlimitedText
	}
	return fmt.Sprintf("%d", balance)
}

// expiryLine renders the grant validity line shown to unlimited users.
// The admin has no grant entry, so the line stays empty for them.
func (b *Bot) expiryLine(userID int64) string {
	expiresAt, permanent, exists := b.ledger.GrantExpiry(userID)
	if !exists {
		return ""
	}
	if permanent {
		return "\n⏰ <b>Validity:</b> forever ♾️"
	}

	remaining := time.Until(expiresAt)
	switch {
	case remaining >= 24*time.Hour:
		return fmt.Sprintf("\n⏰ <b>Validity:</b> %d days left", int(remaining.Hours())/24)
	case remaining >= time.Hour:
		return fmt.Sprintf("\n⏰ <b>Validity:</b> %d hours left", int(remaining.Hours()))
	default:
		return fmt.Sprintf("\n⏰ <b>Validity:</b> %d minutes left", int(remaining.Minutes()))
	}
}

func (b *Bot) mainMenuText(ctx context.Context, userID int64, firstName string) string {
	if firstName == "" {
		firstName = "friend"
	}

	credit := b.creditText(ctx, userID)
	badge := ""
	expiry := ""
	if b.ledger.IsUnlimited(ctx, userID) || b.isAdmin(userID) {
		badge = " 👑"
		expiry = b.expiryLine(userID)
	}

	return fmt.Sprintf(
		"🤖 <b>Hello %s%s!</b>\n"+
			"I am your advanced number search bot. 🚀\n\n"+
			"💎 <b>Your credits:</b> %s%s\n\n"+
			"✨ <b>Main features:</b>\n"+
			"• 🔍 Full details for any number\n"+
			"• 🎁 Earn unlimited credits through referrals\n"+
			"• 📊 Review your search history\n"+
			"• ⚡ Fast and accurate results\n\n"+
			"🎁 <b>Every referral = %d free credits!</b>\n\n"+
			"👇 <b>Use the buttons below to get started</b>",
		firstName, badge, credit, expiry, b.cfg.ReferralCredits)
}

func (b *Bot) mainMenuKeyboard(ctx context.Context, userID int64) tgbotapi.InlineKeyboardMarkup {
	credit := b.creditText(ctx, userID)
	rows := [][]tgbotapi.InlineKeyboardButton{
		{
			tgbotapi.NewInlineKeyboardButtonData("🔍 Search a number", cbHowToSearch),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🎁 Earn %d credits", b.cfg.ReferralCredits), cbReferralLink),
		},
		{
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("💰 Credits (%s)", credit), cbShowCredits),
			tgbotapi.NewInlineKeyboardButtonData("📊 My referrals", cbMyReferrals),
		},
		{
			tgbotapi.NewInlineKeyboardButtonData("📜 Search history", cbSearchHistory),
			tgbotapi.NewInlineKeyboardButtonData("ℹ️ Help", cbHelp),
		},
	}
	if b.cfg.SupportChannelLink != "" {
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonURL("📢 Support channel", b.cfg.SupportChannelLink),
		})
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) joinChannelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("📢 Join the channel", b.cfg.SupportChannelLink),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ I have joined", cbCheckMembership),
		),
	)
}

func joinChannelText() string {
	return "🔒 <b>You must join our channel before using the bot!</b>\n\n" +
		"✨ <b>Why join:</b>\n" +
		"• Get new updates first\n" +
		"• Special offers and bonus credits\n" +
		"• Access to premium features\n\n" +
		"Join through the button below, then press '✅ I have joined'."
}

func searchUsageText() string {
	return "⚠️ <b>Wrong usage!</b>\n\n" +
		"Please give a number after <code>/search</code>.\n\n" +
		"<b>Correct usage:</b>\n" +
		"<code>/search 9798423774</code>\n\n" +
		"<b>Or send the number directly:</b>\n" +
		"<code>9798423774</code>"
}

func (b *Bot) noCreditKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🎁 Earn %d credits", b.cfg.ReferralCredits), cbReferralLink),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💳 Buy credits", cbBuyCredits),
		),
	)
}

func (b *Bot) noCreditText() string {
	return fmt.Sprintf(
		"🛑 <b>Out of credits!</b> 😔\n\n"+
			"You have <b>0 credits</b> left.\n\n"+
			"<b>How to get credits:</b>\n"+
			"1️⃣ Refer friends (+%d credits per referral)\n"+
			"2️⃣ Contact the support channel\n\n"+
			"👇 <b>Start with the buttons below</b>",
		b.cfg.ReferralCredits)
}

func howToSearchText() string {
	return "🔍 <b>How to search a number:</b>\n\n" +
		"<b>Option 1:</b> with the command\n" +
		"<code>/search 9798423774</code>\n\n" +
		"<b>Option 2:</b> send the number directly\n" +
		"<code>9798423774</code>\n\n" +
		"📌 <b>Note:</b>\n" +
		"• Every search costs 1 credit\n" +
		"• Enter a 10 digit mobile number\n" +
		"• No need for +91 or a leading 0"
}

func helpText(cfg *config.Config) string {
	support := ""
	if cfg.SupportChannel != "" {
		support = fmt.Sprintf("<b>📢 Support:</b> @%s\n\n", cfg.SupportChannel)
	}
	return fmt.Sprintf(
		"ℹ️ <b>Help and information</b>\n\n"+
			"<b>📱 Available commands:</b>\n"+
			"• <code>/start</code> - start the bot\n"+
			"• <code>/search &lt;number&gt;</code> - search a number\n\n"+
			"<b>💰 Credit system:</b>\n"+
			"• %d free credits to start\n"+
			"• %d credits per referral\n"+
			"• 1 credit per search\n"+
			"• No referral limit!\n\n"+
			"<b>🎁 How to refer:</b>\n"+
			"1. Get your referral link\n"+
			"2. Send it to friends\n"+
			"3. Earn credits when they join\n\n"+
			"%s<b>🔒 Privacy:</b>\n"+
			"Your search history stays private.",
		cfg.DailyCredits, cfg.ReferralCredits, support)
}

func (b *Bot) buyCreditsText() string {
	return fmt.Sprintf(
		"💳 <b>Buy credits</b>\n\n"+
			"There is no paid credit system at the moment.\n\n"+
			"<b>Ways to get free credits:</b>\n"+
			"🎁 Refer friends - %d credits per referral\n"+
			"📢 Join our channel for updates\n\n"+
			"Contact the support channel for more information.",
		b.cfg.ReferralCredits)
}

func (b *Bot) shareKeyboard(userID int64) tgbotapi.InlineKeyboardMarkup {
	link := b.referralLink(userID)
	shareText := "🔍 Number Search Bot - find details for any number!\n\n" + link
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("💬 Share on WhatsApp", "https://wa.me/?text="+url.QueryEscape(shareText)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("📤 Share on Telegram",
				"https://t.me/share/url?url="+url.QueryEscape(link)+"&text="+url.QueryEscape("Try this bot!")),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Back", cbShowCredits),
		),
	)
}

func backToMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Main menu", cbMainMenu),
		),
	)
}

func backToStatsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Back to stats", cbAdminStats),
		),
	)
}
