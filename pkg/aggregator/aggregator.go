package aggregator

import (
	"context"
	"math/big"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/solana-wallet-bot/pkg/chain"
	"github.com/solana-wallet-bot/pkg/indexer"
	"github.com/solana-wallet-bot/pkg/tokens"
)

// WrappedSOLMint is the wrapped native asset mint.
const WrappedSOLMint = "So11111111111111111111111111111111111111112"

const lamportsPerSOL = 1e9

// MajorTokens are excluded from the memecoin feed.
var MajorTokens = map[string]bool{
	"SOL":   true,
	"USDC":  true,
	"USDT":  true,
	"JUP":   true,
	"PYUSD": true,
}

type ChainReader interface {
	TokenAccountsByOwner(ctx context.Context, owner string) ([]chain.TokenAccount, error)
	Balance(ctx context.Context, address string) (uint64, error)
	SignaturesForAddress(ctx context.Context, address string, limit int) ([]chain.SignatureInfo, error)
}

type TransferSource interface {
	RecentTransfers(ctx context.Context, address string, limit int) ([]indexer.Transfer, error)
}

type TokenDirectory interface {
	Meta(ctx context.Context, mint string) (tokens.Meta, error)
	Price(ctx context.Context, mint string) (float64, error)
}

type Config struct {
	// TransferFetchSize is how many transfers to pull from the indexer per
	// feed request, independent of the caller's limit.
	TransferFetchSize int
	// SignatureLimit caps the signature history used for frequency counting.
	SignatureLimit int
	// Now is the clock used for the 24h frequency window.
	Now func() time.Time
}

// Aggregator combines chain, indexer and token lookups into the three wallet
// views the bot exposes. Provider failures degrade to zero values here; they
// are logged but never surfaced to callers.
type Aggregator struct {
	chain     ChainReader
	transfers TransferSource
	tokens    TokenDirectory
	fetchSize int
	sigLimit  int
	now       func() time.Time
}

func New(chainc ChainReader, transfers TransferSource, directory TokenDirectory, cfg Config) *Aggregator {
	a := &Aggregator{
		chain:     chainc,
		transfers: transfers,
		tokens:    directory,
		fetchSize: cfg.TransferFetchSize,
		sigLimit:  cfg.SignatureLimit,
		now:       cfg.Now,
	}
	if a.fetchSize <= 0 {
		a.fetchSize = 20
	}
	if a.sigLimit <= 0 {
		a.sigLimit = 1000
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// WalletWorth returns the wallet's SOL holdings and its "total worth".
//
// Total worth is a running sum of every token balance in its own units plus
// the native balance. Summing heterogeneous units this way is faithful to the
// upstream behavior this bot replicates, not a price-weighted valuation.
func (a *Aggregator) WalletWorth(ctx context.Context, address string) (float64, float64) {
	accounts, err := a.chain.TokenAccountsByOwner(ctx, address)
	if err != nil {
		log.Warn().Err(err).Str("wallet", abbrev(address)).Msg("token account lookup failed")
		return 0, 0
	}

	var solWorth, totalWorth float64
	for _, acct := range accounts {
		balance := scaledBalance(acct.RawAmount, acct.Decimals)
		if acct.Mint == WrappedSOLMint {
			solWorth += balance
		}
		totalWorth += balance
	}

	lamports, err := a.chain.Balance(ctx, address)
	if err != nil {
		log.Warn().Err(err).Str("wallet", abbrev(address)).Msg("balance lookup failed")
	} else {
		sol := float64(lamports) / lamportsPerSOL
		solWorth += sol
		totalWorth += sol
	}

	return solWorth, totalWorth
}

// MemecoinTransfers returns up to limit formatted messages for the wallet's
// most recent incoming transfers whose symbol is not a major token, newest
// first. A feed fetch failure yields an empty result, never an error.
func (a *Aggregator) MemecoinTransfers(ctx context.Context, address string, limit int) []string {
	batch, err := a.transfers.RecentTransfers(ctx, address, a.fetchSize)
	if err != nil {
		log.Warn().Err(err).Str("wallet", abbrev(address)).Msg("transfer query failed")
		return nil
	}

	var messages []string
	for _, transfer := range batch {
		if MajorTokens[transfer.Symbol] {
			continue
		}
		messages = append(messages, a.formatTransfer(ctx, transfer))
		if len(messages) == limit {
			break
		}
	}

	if len(messages) == 0 {
		log.Debug().Str("wallet", abbrev(address)).Msg("no memecoin transactions found")
	}
	return messages
}

// TransactionFrequency counts the wallet's transactions in the last 24 hours,
// based on up to sigLimit recent signatures. 0 on any failure.
func (a *Aggregator) TransactionFrequency(ctx context.Context, address string) int {
	sigs, err := a.chain.SignaturesForAddress(ctx, address, a.sigLimit)
	if err != nil {
		log.Warn().Err(err).Str("wallet", abbrev(address)).Msg("signature lookup failed")
		return 0
	}

	dayAgo := a.now().Add(-24 * time.Hour)
	count := 0
	for _, sig := range sigs {
		if sig.BlockTime != nil && time.Unix(*sig.BlockTime, 0).After(dayAgo) {
			count++
		}
	}
	return count
}

// scaledBalance converts a raw integer amount string to a balance in whole
// token units.
func scaledBalance(rawAmount string, decimals int) float64 {
	if rawAmount == "" || rawAmount == "0" {
		return 0
	}
	val, ok := new(big.Float).SetString(rawAmount)
	if !ok {
		return 0
	}
	divisor := big.NewFloat(1)
	for i := 0; i < decimals; i++ {
		divisor.Mul(divisor, big.NewFloat(10))
	}
	balance, _ := new(big.Float).Quo(val, divisor).Float64()
	return balance
}

func abbrev(addr string) string {
	if len(addr) > 12 {
		return addr[:6] + "..." + addr[len(addr)-4:]
	}
	return addr
}
