package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/solana-wallet-bot/pkg/aggregator"
	"github.com/solana-wallet-bot/pkg/bot"
	"github.com/solana-wallet-bot/pkg/chain"
	"github.com/solana-wallet-bot/pkg/config"
	"github.com/solana-wallet-bot/pkg/indexer"
	"github.com/solana-wallet-bot/pkg/registry"
	"github.com/solana-wallet-bot/pkg/status"
	"github.com/solana-wallet-bot/pkg/tokens"
)

// walletStore is what main needs from a registry implementation: the bot
// contract plus the stats hook for the status server.
type walletStore interface {
	registry.Registry
	Count() int
}

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
	log.Info().Msg("🛰️ Solana Wallet Tracker Bot starting...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config invalid")
	}

	var store walletStore
	if cfg.DBPath != "" {
		sqliteStore, err := registry.NewSQLite(cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Msg("registry init failed")
		}
		defer sqliteStore.Close()
		store = sqliteStore
	} else {
		store = registry.NewMemory()
	}

	chainClient := chain.New(cfg.SolanaRPCURL)
	transferClient := indexer.New(cfg.BitqueryURL, cfg.BitqueryAPIKey)
	tokenClient := tokens.New(cfg.SolscanAPIURL, cfg.JupiterPriceURL)

	snapshots := aggregator.New(chainClient, transferClient, tokenClient, aggregator.Config{
		TransferFetchSize: cfg.TransferFetchSize,
		SignatureLimit:    cfg.SignatureFetchLimit,
	})
	inspector := aggregator.NewInspector(cfg.InspectRPCURL, tokenClient)

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram init failed")
	}
	walletBot := bot.New(api, store, snapshots, inspector)
	statusServer := status.New(store, cfg.StatusPort)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	printSummary(cfg, api.Self.UserName)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return walletBot.Run(ctx) })
	g.Go(func() error { return statusServer.Run(ctx) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("error")
	}
	log.Info().Msg("goodbye 👋")
}

func printSummary(cfg *config.Config, botName string) {
	header := color.New(color.FgCyan, color.Bold)
	fmt.Println("\n" + strings.Repeat("═", 60))
	header.Println("  🛰️ SOLANA WALLET TRACKER BOT - RUNNING")
	fmt.Println(strings.Repeat("═", 60))
	fmt.Printf("  Bot:      @%s\n", botName)
	fmt.Printf("  RPC:      %s\n", onOff(cfg.SolanaRPCURL != ""))
	fmt.Printf("  Indexer:  %s\n", onOff(cfg.BitqueryAPIKey != ""))
	fmt.Printf("  Registry: %s\n", registryMode(cfg.DBPath))
	fmt.Printf("  Status:   http://localhost:%d\n", cfg.StatusPort)
	fmt.Println(strings.Repeat("═", 60) + "\n")
}

func onOff(configured bool) string {
	if configured {
		return "✅ configured"
	}
	return "❌ not configured (feature degrades to empty results)"
}

func registryMode(dbPath string) string {
	if dbPath != "" {
		return "sqlite (" + dbPath + ")"
	}
	return "in-memory"
}
