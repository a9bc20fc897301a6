package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"lookup_bot/internal/config"
	"lookup_bot/internal/ledger"
	"lookup_bot/internal/logger"
	"lookup_bot/internal/lookup"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot is the Telegram front end: user search flow, referral onboarding
// and the admin command surface, all on top of the credit ledger.
type Bot struct {
	bot      *tgbotapi.BotAPI
	cfg      *config.Config
	ledger   *ledger.Ledger
	access   *ledger.Controller
	lookup   *lookup.Client
	member   ledger.MembershipChecker
	username string
	stopCh   chan struct{}
	wg       sync.WaitGroup
	log      *slog.Logger
}

func New(cfg *config.Config, l *ledger.Ledger, access *ledger.Controller, client *lookup.Client) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}

	log := logger.With("component", "bot")
	log.Info("bot authorized", "username", api.Self.UserName)

	username := cfg.BotUsername
	if username == "" {
		username = api.Self.UserName
	}

	b := &Bot{
		bot:      api,
		cfg:      cfg,
		ledger:   l,
		access:   access,
		lookup:   client,
		username: username,
		stopCh:   make(chan struct{}),
		log:      log,
	}
	if cfg.SupportChannel != "" {
		b.member = &channelMembership{bot: api, channel: cfg.SupportChannel, log: log}
	}
	return b, nil
}

// Membership returns the channel checker backed by this bot
// connection, or nil when no support channel is configured.
func (b *Bot) Membership() ledger.MembershipChecker {
	return b.member
}

// SetAccess wires the access controller after construction. The
// controller needs the membership checker, which needs the bot
// connection, so the two are tied together in main.
func (b *Bot) SetAccess(access *ledger.Controller) {
	b.access = access
}

// Start runs the long-poll update loop until Stop is called.
func (b *Bot) Start() {
	b.registerCommands()
	b.notifyStartup()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.bot.GetUpdatesChan(u)
	b.log.Info("starting bot update loop")

	for {
		select {
		case <-b.stopCh:
			b.log.Info("stopping bot update loop")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}

			switch {
			case update.CallbackQuery != nil:
				b.wg.Add(1)
				go func(q *tgbotapi.CallbackQuery) {
					defer b.wg.Done()
					b.handleCallback(q)
				}(update.CallbackQuery)

			case update.Message != nil && update.Message.Text != "":
				b.wg.Add(1)
				go func(msg *tgbotapi.Message) {
					defer b.wg.Done()
					b.handleMessage(msg)
				}(update.Message)
			}
		}
	}
}

// Stop gracefully stops the bot.
func (b *Bot) Stop() {
	b.log.Info("stopping bot...")
	close(b.stopCh)
	b.bot.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("bot stopped gracefully")
	case <-time.After(10 * time.Second):
		b.log.Warn("bot shutdown timeout, some handlers may not have completed")
	}
}

func (b *Bot) isAdmin(userID int64) bool {
	return b.cfg.AdminID != 0 && userID == b.cfg.AdminID
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// Bare numbers behave like /search.
	if num, ok := normalizeNumber(msg.Text); ok {
		b.handleSearch(ctx, msg, num)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.handleStart(ctx, msg)

	case "search":
		arg := strings.TrimSpace(msg.CommandArguments())
		if arg == "" {
			b.reply(msg.Chat.ID, searchUsageText())
			return
		}
		num, ok := normalizeNumber(arg)
		if !ok {
			if !isDigits(stripNumber(arg)) {
				b.reply(msg.Chat.ID, "❌ Please send digits only, no letters or special characters.")
			} else {
				b.reply(msg.Chat.ID, "❌ Please send a mobile number with at least 10 digits.")
			}
			return
		}
		b.handleSearch(ctx, msg, num)

	case "help":
		b.reply(msg.Chat.ID, helpText(b.cfg))

	// Admin-only commands.
	case "stats":
		b.requireAdmin(msg, func() { b.handleAdminStats(msg.Chat.ID, 0) })
	case "unlimited":
		b.requireAdmin(msg, func() { b.handleGrant(ctx, msg) })
	case "remove_unlimited":
		b.requireAdmin(msg, func() { b.handleRevoke(ctx, msg) })
	case "ban":
		b.requireAdmin(msg, func() { b.handleBan(ctx, msg) })
	case "unban":
		b.requireAdmin(msg, func() { b.handleUnban(ctx, msg) })
	case "addcredits":
		b.requireAdmin(msg, func() { b.handleAddCredits(ctx, msg) })
	case "broadcast":
		b.requireAdmin(msg, func() { b.handleBroadcast(msg) })
	}
}

func (b *Bot) requireAdmin(msg *tgbotapi.Message, fn func()) {
	if !b.isAdmin(msg.From.ID) {
		b.reply(msg.Chat.ID, "⚠️ <b>Denied.</b> This command is admin only.")
		return
	}
	fn()
}

// reply sends an HTML message and logs failures instead of returning
// them; chat sends never bubble into ledger state.
func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := b.bot.Send(msg); err != nil {
		b.log.Error("send failed", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) replyMarkup(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = markup
	if _, err := b.bot.Send(msg); err != nil {
		b.log.Error("send failed", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.DisableWebPagePreview = true
	edit.ReplyMarkup = markup
	if _, err := b.bot.Send(edit); err != nil {
		b.log.Error("edit failed", "chat_id", chatID, "error", err)
	}
}

// notify is a fire-and-forget direct message to a user who may have
// never talked to the bot or blocked it.
func (b *Bot) notify(userID int64, text string) {
	msg := tgbotapi.NewMessage(userID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.bot.Send(msg); err != nil {
		b.log.Debug("notification not delivered", "user_id", userID, "error", err)
	}
}

func (b *Bot) registerCommands() {
	cfg := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "🚀 Start the bot"},
		tgbotapi.BotCommand{Command: "search", Description: "🔍 Search a number"},
		tgbotapi.BotCommand{Command: "help", Description: "ℹ️ Help and commands"},
	)
	if _, err := b.bot.Request(cfg); err != nil {
		b.log.Error("failed to set bot commands", "error", err)
	}
}

func (b *Bot) notifyStartup() {
	if b.cfg.AdminID == 0 {
		return
	}
	stats := b.ledger.Stats()
	b.notify(b.cfg.AdminID, fmt.Sprintf(
		"✅ <b>Bot started successfully!</b>\n\n"+
			"👥 Total users: %d\n"+
			"👑 Unlimited users: %d\n"+
			"🚫 Banned users: %d\n"+
			"⏰ Time: %s",
		stats.TotalUsers, stats.UnlimitedUsers, stats.BannedUsers,
		time.Now().Format("02-01-2006 15:04:05")))
}
