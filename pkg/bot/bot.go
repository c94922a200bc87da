package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/solana-wallet-bot/pkg/registry"
)

const (
	welcomeText = "Welcome to the Solana Wallet Tracker Bot! Use /track <wallet_address> to start tracking a wallet."
	usageText   = "Please provide a wallet address. Usage: /track <wallet_address>"
	loadingText = "Loading... Please wait."
)

// API is the slice of the Telegram Bot API client the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Snapshotter is the aggregator surface the menu buttons call into.
type Snapshotter interface {
	WalletWorth(ctx context.Context, address string) (float64, float64)
	MemecoinTransfers(ctx context.Context, address string, limit int) []string
	TransactionFrequency(ctx context.Context, address string) int
}

// SwapInspector backs the /inspect command.
type SwapInspector interface {
	InspectSwap(ctx context.Context, signature string) (string, bool)
}

type Bot struct {
	api       API
	registry  registry.Registry
	snapshots Snapshotter
	inspector SwapInspector
}

func New(api API, reg registry.Registry, snapshots Snapshotter, inspector SwapInspector) *Bot {
	return &Bot{api: api, registry: reg, snapshots: snapshots, inspector: inspector}
}

// Run polls for updates until the context is cancelled. Each update is
// handled on its own goroutine; updates share no state beyond the registry.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	log.Info().Msg("📨 telegram bot polling started")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.reply(msg.Chat.ID, welcomeText)
	case "track":
		b.handleTrack(msg)
	case "inspect":
		b.handleInspect(ctx, msg)
	}
}

func (b *Bot) handleTrack(msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) != 1 {
		b.reply(msg.Chat.ID, usageText)
		return
	}

	address := args[0]
	if err := b.registry.SetWallet(msg.From.ID, address); err != nil {
		log.Error().Err(err).Int64("user", msg.From.ID).Msg("set wallet failed")
		b.reply(msg.Chat.ID, fmt.Sprintf("An error occurred while processing your request: %v", err))
		return
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, fmt.Sprintf("Now tracking wallet: %s\nWhat would you like to know?", address))
	reply.ReplyMarkup = walletKeyboard(address)
	if _, err := b.api.Send(reply); err != nil {
		log.Warn().Err(err).Msg("send failed")
	}
}

func (b *Bot) handleInspect(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) != 1 {
		b.reply(msg.Chat.ID, "Please provide a transaction signature. Usage: /inspect <signature>")
		return
	}

	summary, ok := b.inspector.InspectSwap(ctx, args[0])
	if !ok {
		b.reply(msg.Chat.ID, "No swap details found for this transaction.")
		return
	}
	b.reply(msg.Chat.ID, summary)
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		log.Warn().Err(err).Msg("callback answer failed")
	}
	if cq.Message == nil {
		return
	}

	action, limit, wallet, ok := parseCallback(cq.Data)
	if !ok {
		return
	}

	chatID := cq.Message.Chat.ID
	messageID := cq.Message.MessageID
	if _, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, loadingText)); err != nil {
		log.Warn().Err(err).Msg("edit failed")
	}

	text, err := b.answer(ctx, action, limit, wallet)
	if err != nil {
		errEdit := tgbotapi.NewEditMessageText(chatID, messageID,
			fmt.Sprintf("An error occurred while processing your request: %v", err))
		if _, err := b.api.Send(errEdit); err != nil {
			log.Warn().Err(err).Msg("edit failed")
		}
		return
	}

	keyboard := walletKeyboard(wallet)
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	edit.DisableWebPagePreview = true
	edit.ReplyMarkup = &keyboard
	if _, err := b.api.Send(edit); err != nil {
		log.Warn().Err(err).Msg("edit failed")
	}
}

// answer runs the aggregator entry point for one menu action and renders the
// reply text.
func (b *Bot) answer(ctx context.Context, action string, limit int, wallet string) (string, error) {
	switch action {
	case "worth":
		sol, total := b.snapshots.WalletWorth(ctx, wallet)
		return fmt.Sprintf("SOL Holdings: %.2f SOL\nTotal Wallet Worth: %.2f (in SOL equivalent)", sol, total), nil
	case "memecoins":
		transactions := b.snapshots.MemecoinTransfers(ctx, wallet, limit)
		if len(transactions) == 0 {
			return "No recent memecoin transactions found.", nil
		}
		plural := ""
		if limit > 1 {
			plural = "s"
		}
		return fmt.Sprintf("Latest %d Memecoin Transaction%s:\n\n%s", limit, plural, strings.Join(transactions, "\n\n")), nil
	case "frequency":
		frequency := b.snapshots.TransactionFrequency(ctx, wallet)
		return fmt.Sprintf("Transaction Frequency: %d transactions per day", frequency), nil
	}
	return "", fmt.Errorf("unknown action %q", action)
}

// parseCallback splits button data of the form "<action>_..._<wallet>". The
// wallet is always the last segment; memecoins carries its limit in between.
func parseCallback(data string) (action string, limit int, wallet string, ok bool) {
	parts := strings.Split(data, "_")
	if len(parts) < 2 {
		return "", 0, "", false
	}
	action = parts[0]
	wallet = parts[len(parts)-1]
	limit = 1

	if action == "memecoins" {
		if len(parts) < 3 {
			return "", 0, "", false
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil || n < 1 {
			return "", 0, "", false
		}
		limit = n
	}

	switch action {
	case "worth", "memecoins", "frequency":
		return action, limit, wallet, true
	}
	return "", 0, "", false
}

func walletKeyboard(address string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Wallet Worth", "worth_"+address)),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Latest Memecoin Transaction", "memecoins_1_"+address)),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Latest 3 Memecoin Transactions", "memecoins_3_"+address)),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Transaction Frequency", "frequency_"+address)),
	)
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Warn().Err(err).Msg("send failed")
	}
}
