package aggregator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog/log"
)

const swapInstructionMarker = "Program log: Instruction: Swap"

// TokenPricer is the slice of the token directory the swap inspector needs.
type TokenPricer interface {
	Price(ctx context.Context, mint string) (float64, error)
}

// Inspector summarizes a single transaction as a swap, by scanning its
// program logs for swap markers. It is a best-effort heuristic over
// human-readable log lines: anything it cannot read yields no result rather
// than an error. Callers hold it behind an interface so a structured
// instruction decoder can replace it.
type Inspector struct {
	rpc    *rpc.Client
	prices TokenPricer
	now    func() time.Time
}

func NewInspector(rpcURL string, prices TokenPricer) *Inspector {
	return &Inspector{rpc: rpc.New(rpcURL), prices: prices, now: time.Now}
}

// InspectSwap fetches the transaction and, if its logs mark a swap with both
// legs present, returns a formatted summary. ok is false whenever the
// transaction is missing, not a swap, or its logs cannot be read.
func (i *Inspector) InspectSwap(ctx context.Context, signature string) (string, bool) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		log.Debug().Err(err).Str("signature", signature).Msg("bad signature")
		return "", false
	}

	maxVersion := uint64(0)
	tx, err := i.rpc.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Commitment:                     rpc.CommitmentConfirmed,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	if err != nil {
		log.Debug().Err(err).Str("signature", abbrev(signature)).Msg("get transaction failed")
		return "", false
	}
	if tx == nil || tx.Meta == nil || len(tx.Meta.LogMessages) == 0 {
		return "", false
	}

	legs, ok := parseSwapLogs(tx.Meta.LogMessages)
	if !ok {
		return "", false
	}

	blockTime := time.Time{}
	if tx.BlockTime != nil {
		blockTime = tx.BlockTime.Time()
	}
	return i.summary(ctx, signature, legs, blockTime), true
}

type swapLegs struct {
	input  string
	output string
}

// parseSwapLogs extracts the swap legs from program log lines. It requires
// the literal swap instruction marker plus one "Swap Input" and one
// "Swap Output" line.
func parseSwapLogs(logs []string) (swapLegs, bool) {
	marked := false
	for _, line := range logs {
		if strings.Contains(line, swapInstructionMarker) {
			marked = true
			break
		}
	}
	if !marked {
		return swapLegs{}, false
	}

	var legs swapLegs
	for _, line := range logs {
		if legs.input == "" {
			legs.input = afterMarker(line, "Swap Input")
		}
		if legs.output == "" {
			legs.output = afterMarker(line, "Swap Output")
		}
		if legs.input != "" && legs.output != "" {
			break
		}
	}
	if legs.input == "" || legs.output == "" {
		return swapLegs{}, false
	}
	return legs, true
}

// afterMarker returns the trimmed text after "<marker>:" in line, or "".
func afterMarker(line, marker string) string {
	idx := strings.Index(line, marker)
	if idx < 0 {
		return ""
	}
	rest := strings.TrimSpace(line[idx+len(marker):])
	rest = strings.TrimPrefix(rest, ":")
	return strings.TrimSpace(rest)
}

// legMint extracts the mint from a swap leg of the form "<SYMBOL> <mint>".
func legMint(leg string) string {
	fields := strings.Fields(leg)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}

func (i *Inspector) summary(ctx context.Context, signature string, legs swapLegs, blockTime time.Time) string {
	short := signature
	if len(short) > 10 {
		short = short[:10]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🚀 Transaction: %s... 🚀\n", short)
	if !blockTime.IsZero() {
		fmt.Fprintf(&b, "🕰️ %s\n", formatElapsed(i.now().Sub(blockTime)))
	}
	fmt.Fprintf(&b, "💱 Swapped %s for %s\n", legs.input, legs.output)

	if mint := legMint(legs.input); mint != "" {
		if price, err := i.prices.Price(ctx, mint); err == nil {
			fmt.Fprintf(&b, "💲 Input Token Price: $%.6f\n", price)
		}
	}
	if mint := legMint(legs.output); mint != "" {
		if price, err := i.prices.Price(ctx, mint); err == nil {
			fmt.Fprintf(&b, "💲 Output Token Price: $%.6f\n", price)
		}
	}
	return b.String()
}

// formatElapsed renders a duration as "2d 3h 4m ago", dropping zero-valued
// day and hour components.
func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	var b strings.Builder
	if days > 0 {
		fmt.Fprintf(&b, "%dd ", days)
	}
	if hours > 0 {
		fmt.Fprintf(&b, "%dh ", hours)
	}
	fmt.Fprintf(&b, "%dm ago", minutes)
	return b.String()
}
