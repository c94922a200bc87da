package aggregator

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/solana-wallet-bot/pkg/indexer"
)

const transferTimeLayout = "02 January 2006 at 03:04 PM"

var amountPrinter = message.NewPrinter(language.English)

// formatTransfer renders one transfer as the multi-line Markdown message the
// bot sends. Symbol and name fall back to metadata lookups only when the
// indexer omitted them or reported "Unknown"; a metadata failure leaves the
// field as "Unknown".
func (a *Aggregator) formatTransfer(ctx context.Context, transfer indexer.Transfer) string {
	symbol := transfer.Symbol
	if symbol == "" || symbol == "Unknown" {
		symbol = "Unknown"
		if meta, err := a.tokens.Meta(ctx, transfer.TokenAddress); err == nil {
			symbol = meta.Symbol
		}
	}

	name := transfer.Name
	if name == "" {
		name = "Unknown"
		if meta, err := a.tokens.Meta(ctx, transfer.TokenAddress); err == nil {
			name = meta.Name
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🚀 [Transaction](https://solscan.io/tx/%s)\n", transfer.Signature)
	fmt.Fprintf(&b, "🕰️ %s\n", transfer.Timestamp.Format(transferTimeLayout))
	fmt.Fprintf(&b, "💱 Received: %s %s\n", groupAmount(transfer.Amount), symbol)
	fmt.Fprintf(&b, "🏷️ Ticker: %s\n", symbol)
	fmt.Fprintf(&b, "💎 Token Name: %s\n", name)
	fmt.Fprintf(&b, "📍 Token Address: `%s`\n", transfer.TokenAddress)
	fmt.Fprintf(&b, "🔄 [Swap on Jupiter](https://jup.ag/swap/SOL-%s)\n", transfer.TokenAddress)
	return b.String()
}

// groupAmount formats an amount with thousands separators, no fraction.
func groupAmount(amount float64) string {
	return amountPrinter.Sprintf("%.0f", amount)
}
