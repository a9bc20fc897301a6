package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) adminStatsText() string {
	stats := b.ledger.Stats()
	return fmt.Sprintf(
		"📊 <b>Bot Statistics Dashboard</b>\n"+
			"━━━━━━━━━━━━━━━━━━━━\n\n"+
			"👥 <b>Total users:</b> %d\n"+
			"🔗 <b>Total referrals:</b> %d\n"+
			"👑 <b>Unlimited users:</b> %d\n"+
			"🚫 <b>Banned users:</b> %d\n"+
			"🔍 <b>Total searches:</b> %d\n"+
			"💳 <b>Credits used:</b> %d\n\n"+
			"📅 <b>Today's stats:</b>\n"+
			"  • New users: %d\n"+
			"  • Searches: %d\n"+
			"  • Referrals: %d\n\n"+
			"⏰ <b>Last update:</b> %s",
		stats.TotalUsers, stats.TotalReferrals, stats.UnlimitedUsers,
		stats.BannedUsers, stats.TotalSearches, stats.CreditsUsed,
		stats.Daily.NewUsers, stats.Daily.Searches, stats.Daily.Referrals,
		stats.GeneratedAt.Format("02-01-2006 15:04"))
}

func adminStatsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👥 Top referrers", cbAdminTopUsers),
			tgbotapi.NewInlineKeyboardButtonData("👑 Unlimited list", cbAdminUnlimited),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚫 Banned users", cbAdminBanned),
			tgbotapi.NewInlineKeyboardButtonData("🔄 Refresh", cbAdminStats),
		),
	)
}

// handleAdminStats renders the dashboard, editing in place when it was
// reached from an inline button.
func (b *Bot) handleAdminStats(chatID int64, messageID int) {
	markup := adminStatsKeyboard()
	if messageID != 0 {
		b.edit(chatID, messageID, b.adminStatsText(), &markup)
		return
	}
	b.replyMarkup(chatID, b.adminStatsText(), markup)
}

func (b *Bot) showTopReferrers(chatID int64, messageID int) {
	top := b.ledger.TopReferrers(10)
	if len(top) == 0 {
		markup := backToStatsKeyboard()
		b.edit(chatID, messageID, "🏆 <b>Top referrers:</b>\n\nNo referrals yet.", &markup)
		return
	}

	var sb strings.Builder
	sb.WriteString("🏆 <b>Top 10 referrers:</b>\n\n")
	medals := []string{"🥇", "🥈", "🥉"}
	for i, rc := range top {
		prefix := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			prefix = medals[i]
		}
		sb.WriteString(fmt.Sprintf("%s User <code>%d</code> - %d referrals\n", prefix, rc.UserID, rc.Count))
	}

	markup := backToStatsKeyboard()
	b.edit(chatID, messageID, sb.String(), &markup)
}

func (b *Bot) showUnlimitedList(chatID int64, messageID int) {
	grants := b.ledger.UnlimitedList()
	markup := backToStatsKeyboard()

	if len(grants) == 0 {
		b.edit(chatID, messageID, "👑 <b>Unlimited users:</b>\n\nNo unlimited users found.", &markup)
		return
	}

	var sb strings.Builder
	sb.WriteString("👑 <b>Unlimited users:</b>\n\n")
	shown := grants
	if len(shown) > 20 {
		shown = shown[:20]
	}
	for _, g := range shown {
		expiry := "Forever ♾️"
		if !g.Permanent {
			expiry = g.ExpiresAt.Format("02-01-2006 15:04")
		}
		sb.WriteString(fmt.Sprintf("• User <code>%d</code> - %s\n", g.UserID, expiry))
	}
	if len(grants) > 20 {
		sb.WriteString(fmt.Sprintf("\n... and %d more", len(grants)-20))
	}

	b.edit(chatID, messageID, sb.String(), &markup)
}

func (b *Bot) showBannedList(chatID int64, messageID int) {
	banned := b.ledger.BannedList()
	markup := backToStatsKeyboard()

	if len(banned) == 0 {
		b.edit(chatID, messageID, "🚫 <b>Banned users:</b>\n\nNo banned users found.", &markup)
		return
	}

	var sb strings.Builder
	sb.WriteString("🚫 <b>Banned users:</b>\n\n")
	shown := banned
	if len(shown) > 30 {
		shown = shown[:30]
	}
	for _, id := range shown {
		sb.WriteString(fmt.Sprintf("• User <code>%d</code>\n", id))
	}
	if len(banned) > 30 {
		sb.WriteString(fmt.Sprintf("\n... and %d more", len(banned)-30))
	}

	b.edit(chatID, messageID, sb.String(), &markup)
}

// parseGrantDuration reads the optional grant duration argument: an h
// suffix for hours, d for days, m for 30-day months. An empty argument
// means a permanent grant.
func parseGrantDuration(arg string) (time.Duration, string, error) {
	arg = strings.ToLower(strings.TrimSpace(arg))
	if arg == "" {
		return 0, "forever ♾️", nil
	}

	n, err := strconv.Atoi(arg[:len(arg)-1])
	if err != nil || n <= 0 {
		return 0, "", fmt.Errorf("invalid duration value %q", arg)
	}

	switch arg[len(arg)-1] {
	case 'h':
		return time.Duration(n) * time.Hour, fmt.Sprintf("%d hours", n), nil
	case 'd':
		return time.Duration(n) * 24 * time.Hour, fmt.Sprintf("%d days", n), nil
	case 'm':
		return time.Duration(n) * 30 * 24 * time.Hour, fmt.Sprintf("%d months", n), nil
	}
	return 0, "", fmt.Errorf("invalid duration format %q", arg)
}

func (b *Bot) handleGrant(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 1 {
		b.reply(msg.Chat.ID,
			"📝 <b>Unlimited Access Command</b>\n\n"+
				"<b>Usage:</b>\n"+
				"<code>/unlimited &lt;user_id&gt; [time]</code>\n\n"+
				"<b>Examples:</b>\n"+
				"• <code>/unlimited 123456789</code> ➜ Forever\n"+
				"• <code>/unlimited 123456789 1h</code> ➜ 1 hour\n"+
				"• <code>/unlimited 123456789 7d</code> ➜ 7 days\n"+
				"• <code>/unlimited 123456789 3m</code> ➜ 3 months")
		return
	}

	targetID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.reply(msg.Chat.ID, "❌ Invalid user ID. Please provide a valid number.")
		return
	}

	durationArg := ""
	if len(args) > 1 {
		durationArg = args[1]
	}
	duration, durationText, err := parseGrantDuration(durationArg)
	if err != nil {
		b.reply(msg.Chat.ID, "❌ Invalid time format. Use: 1h, 7d, 3m, etc.")
		return
	}

	var expiresAt time.Time
	if duration > 0 {
		expiresAt = time.Now().Add(duration)
	}
	if err := b.ledger.Grant(ctx, targetID, expiresAt); err != nil {
		b.reply(msg.Chat.ID, fmt.Sprintf("❌ Error: %v", err))
		return
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 View all unlimited users", cbAdminUnlimited),
		),
	)
	b.replyMarkup(msg.Chat.ID, fmt.Sprintf(
		"✅ <b>Unlimited access granted!</b> 👑\n\n"+
			"👤 <b>User ID:</b> <code>%d</code>\n"+
			"⏰ <b>Duration:</b> %s\n"+
			"📅 <b>Date:</b> %s",
		targetID, durationText, time.Now().Format("02-01-2006 15:04")), markup)

	b.notify(targetID, fmt.Sprintf(
		"🎉 <b>Congratulations!</b> 👑\n\n"+
			"You received <b>unlimited search access</b>!\n"+
			"⏰ <b>Duration:</b> %s\n\n"+
			"You can now search without any limit! 🚀", durationText))
}

func (b *Bot) handleRevoke(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		b.reply(msg.Chat.ID,
			"📝 <b>Usage:</b> <code>/remove_unlimited &lt;user_id&gt;</code>\n\n"+
				"<b>Example:</b> <code>/remove_unlimited 123456789</code>")
		return
	}

	targetID, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		b.reply(msg.Chat.ID, "❌ Invalid user ID.")
		return
	}

	removed, err := b.ledger.Revoke(ctx, targetID)
	if err != nil {
		b.reply(msg.Chat.ID, fmt.Sprintf("❌ Error: %v", err))
		return
	}
	if !removed {
		b.reply(msg.Chat.ID, fmt.Sprintf("❌ User <code>%d</code> has no unlimited access.", targetID))
		return
	}

	b.reply(msg.Chat.ID, fmt.Sprintf(
		"✅ <b>Unlimited access removed</b>\n\n"+
			"Unlimited access for user <code>%d</code> was removed.", targetID))
	b.notify(targetID,
		"⚠️ Your <b>unlimited access</b> has ended.\n\n"+
			"You can keep using the bot with normal credits.")
}

func (b *Bot) handleBan(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 1 {
		b.reply(msg.Chat.ID,
			"📝 <b>Usage:</b> <code>/ban &lt;user_id&gt; [reason]</code>\n\n"+
				"<b>Example:</b> <code>/ban 123456789 Spam</code>")
		return
	}

	targetID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.reply(msg.Chat.ID, "❌ Invalid user ID.")
		return
	}

	reason := "No reason provided"
	if len(args) > 1 {
		reason = strings.Join(args[1:], " ")
	}

	if err := b.ledger.Ban(ctx, targetID, reason); err != nil {
		b.reply(msg.Chat.ID, fmt.Sprintf("❌ Error: %v", err))
		return
	}

	b.reply(msg.Chat.ID, fmt.Sprintf(
		"🚫 <b>User banned</b>\n\n"+
			"👤 <b>User ID:</b> <code>%d</code>\n"+
			"📝 <b>Reason:</b> %s", targetID, reason))
	b.notify(targetID, fmt.Sprintf(
		"🚫 <b>You have been banned from using this bot.</b>\n\n"+
			"<b>Reason:</b> %s\n\n"+
			"Contact support for more information.", reason))
}

func (b *Bot) handleUnban(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		b.reply(msg.Chat.ID, "📝 <b>Usage:</b> <code>/unban &lt;user_id&gt;</code>")
		return
	}

	targetID, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		b.reply(msg.Chat.ID, "❌ Invalid user ID.")
		return
	}

	removed, err := b.ledger.Unban(ctx, targetID)
	if err != nil {
		b.reply(msg.Chat.ID, fmt.Sprintf("❌ Error: %v", err))
		return
	}
	if !removed {
		b.reply(msg.Chat.ID, fmt.Sprintf("❌ User <code>%d</code> is not banned.", targetID))
		return
	}

	b.reply(msg.Chat.ID, fmt.Sprintf("✅ User <code>%d</code> has been unbanned.", targetID))
	b.notify(targetID,
		"✅ <b>Good news!</b> You have been unbanned.\n\n"+
			"You can use the bot again.")
}

func (b *Bot) handleAddCredits(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 2 {
		b.reply(msg.Chat.ID,
			"📝 <b>Usage:</b> <code>/addcredits &lt;user_id&gt; &lt;credits&gt;</code>\n\n"+
				"<b>Example:</b> <code>/addcredits 123456789 50</code>")
		return
	}

	targetID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.reply(msg.Chat.ID, "❌ Please provide valid numbers.")
		return
	}
	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		b.reply(msg.Chat.ID, "❌ Please provide valid numbers.")
		return
	}

	newBalance, err := b.ledger.AddCredits(ctx, targetID, amount)
	if err != nil {
		b.reply(msg.Chat.ID, "❌ Credits must be greater than 0.")
		return
	}

	b.reply(msg.Chat.ID, fmt.Sprintf(
		"✅ <b>Credits added successfully!</b>\n\n"+
			"👤 <b>User ID:</b> <code>%d</code>\n"+
			"➕ <b>Added:</b> %d credits\n"+
			"💰 <b>New total:</b> %d credits",
		targetID, amount, newBalance))
	b.notify(targetID, fmt.Sprintf(
		"🎉 <b>Bonus credits!</b>\n\n"+
			"You received <b>%d bonus credits</b>!\n"+
			"💰 <b>Total credits:</b> %d", amount, newBalance))
}

// handleBroadcast fans a message out to every known user, paced to
// stay under Telegram's send limits, with periodic progress edits.
func (b *Bot) handleBroadcast(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	text := strings.TrimSpace(msg.CommandArguments())
	if text == "" {
		b.reply(msg.Chat.ID,
			"📣 <b>Broadcast Command</b>\n\n"+
				"<b>Usage:</b> <code>/broadcast &lt;message&gt;</code>\n\n"+
				"<b>Example:</b>\n"+
				"<code>/broadcast 🎉 The bot has a new feature!</code>\n\n"+
				"<b>Tips:</b>\n"+
				"• HTML formatting supported\n"+
				"• Keep messages short and clear")
		return
	}

	userIDs := b.ledger.UserIDs()
	status := tgbotapi.NewMessage(msg.Chat.ID, fmt.Sprintf(
		"⏳ <b>Broadcasting...</b>\n\n"+
			"👥 Target users: %d\n"+
			"✅ Sent: 0\n"+
			"❌ Failed: 0", len(userIDs)))
	status.ParseMode = tgbotapi.ModeHTML
	statusMsg, err := b.bot.Send(status)
	if err != nil {
		b.log.Error("send failed", "chat_id", msg.Chat.ID, "error", err)
	}

	b.log.Info("starting broadcast", "targets", len(userIDs))

	sent := 0
	failed := 0
	blocked := 0

	for idx, userID := range userIDs {
		select {
		case <-ctx.Done():
			b.log.Warn("broadcast cancelled", "sent", sent, "remaining", len(userIDs)-idx)
			return
		default:
		}

		out := tgbotapi.NewMessage(userID, "📢 <b>Broadcast Message</b>\n\n"+text)
		out.ParseMode = tgbotapi.ModeHTML
		if _, err := b.bot.Send(out); err != nil {
			failed++
			if strings.Contains(err.Error(), "blocked") || strings.Contains(err.Error(), "deactivated") {
				blocked++
			} else {
				b.log.Debug("broadcast send failed", "user_id", userID, "error", err)
			}
		} else {
			sent++
		}

		if (idx+1)%50 == 0 {
			b.edit(msg.Chat.ID, statusMsg.MessageID, fmt.Sprintf(
				"⏳ <b>Broadcasting...</b>\n\n"+
					"👥 Target users: %d\n"+
					"✅ Sent: %d\n"+
					"❌ Failed: %d\n"+
					"📊 Progress: %d/%d",
				len(userIDs), sent, failed, idx+1, len(userIDs)), nil)
		}

		// Pause periodically to stay under the rate limit.
		if (idx+1)%30 == 0 {
			time.Sleep(time.Second)
		}
	}

	b.log.Info("broadcast complete", "sent", sent, "failed", failed, "blocked", blocked)

	rate := 0.0
	if len(userIDs) > 0 {
		rate = float64(sent) / float64(len(userIDs)) * 100
	}
	b.edit(msg.Chat.ID, statusMsg.MessageID, fmt.Sprintf(
		"✅ <b>Broadcast complete!</b>\n\n"+
			"📊 <b>Results:</b>\n"+
			"✅ Successfully sent: %d\n"+
			"❌ Failed: %d\n"+
			"🚫 Blocked the bot: %d\n"+
			"📈 Success rate: %.1f%%",
		sent, failed, blocked, rate), nil)
}
