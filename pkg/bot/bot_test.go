package bot

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"

	"github.com/solana-wallet-bot/pkg/registry"
)

type fakeAPI struct {
	sent []tgbotapi.Chattable
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (f *fakeAPI) StopReceivingUpdates() {}

func (f *fakeAPI) lastText(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.sent)
	switch msg := f.sent[len(f.sent)-1].(type) {
	case tgbotapi.MessageConfig:
		return msg.Text
	case tgbotapi.EditMessageTextConfig:
		return msg.Text
	}
	t.Fatal("unexpected chattable type")
	return ""
}

type fakeSnapshots struct {
	sol       float64
	total     float64
	transfers []string
	frequency int
}

func (f *fakeSnapshots) WalletWorth(ctx context.Context, address string) (float64, float64) {
	return f.sol, f.total
}

func (f *fakeSnapshots) MemecoinTransfers(ctx context.Context, address string, limit int) []string {
	if limit < len(f.transfers) {
		return f.transfers[:limit]
	}
	return f.transfers
}

func (f *fakeSnapshots) TransactionFrequency(ctx context.Context, address string) int {
	return f.frequency
}

type fakeInspector struct {
	summary string
	ok      bool
}

func (f *fakeInspector) InspectSwap(ctx context.Context, signature string) (string, bool) {
	return f.summary, f.ok
}

func commandMessage(text string, commandLen int) *tgbotapi.Message {
	return &tgbotapi.Message{
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: commandLen}},
		Chat:     &tgbotapi.Chat{ID: 1},
		From:     &tgbotapi.User{ID: 42},
	}
}

func newTestBot(api *fakeAPI, reg registry.Registry, snapshots Snapshotter, inspector SwapInspector) *Bot {
	if reg == nil {
		reg = registry.NewMemory()
	}
	if snapshots == nil {
		snapshots = &fakeSnapshots{}
	}
	if inspector == nil {
		inspector = &fakeInspector{}
	}
	return New(api, reg, snapshots, inspector)
}

func TestStart_SendsWelcome(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, nil, nil, nil)

	b.handleCommand(context.Background(), commandMessage("/start", 6))
	require.Equal(t, welcomeText, api.lastText(t))
}

func TestTrack_NoArgumentSendsUsage(t *testing.T) {
	api := &fakeAPI{}
	reg := registry.NewMemory()
	b := newTestBot(api, reg, nil, nil)

	b.handleCommand(context.Background(), commandMessage("/track", 6))
	require.Equal(t, usageText, api.lastText(t))
	require.Equal(t, 0, reg.Count())
}

func TestTrack_TooManyArgumentsSendsUsage(t *testing.T) {
	api := &fakeAPI{}
	reg := registry.NewMemory()
	b := newTestBot(api, reg, nil, nil)

	b.handleCommand(context.Background(), commandMessage("/track walletA walletB", 6))
	require.Equal(t, usageText, api.lastText(t))
	require.Equal(t, 0, reg.Count())
}

func TestTrack_StoresWalletAndSendsMenu(t *testing.T) {
	api := &fakeAPI{}
	reg := registry.NewMemory()
	b := newTestBot(api, reg, nil, nil)

	b.handleCommand(context.Background(), commandMessage("/track 9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM", 6))

	addr, err := reg.GetWallet(42)
	require.NoError(t, err)
	require.Equal(t, "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM", addr)

	require.Len(t, api.sent, 1)
	msg, ok := api.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	require.Equal(t, "Now tracking wallet: 9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM\nWhat would you like to know?", msg.Text)

	keyboard, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, keyboard.InlineKeyboard, 4)
	require.Equal(t, "worth_9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM", *keyboard.InlineKeyboard[0][0].CallbackData)
	require.Equal(t, "memecoins_1_9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM", *keyboard.InlineKeyboard[1][0].CallbackData)
	require.Equal(t, "memecoins_3_9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM", *keyboard.InlineKeyboard[2][0].CallbackData)
	require.Equal(t, "frequency_9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM", *keyboard.InlineKeyboard[3][0].CallbackData)
}

func TestInspect_SendsSummary(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, nil, nil, &fakeInspector{summary: "💱 Swapped SOL for BONK", ok: true})

	b.handleCommand(context.Background(), commandMessage("/inspect somesignature", 8))
	require.Equal(t, "💱 Swapped SOL for BONK", api.lastText(t))
}

func TestInspect_NoSwapFound(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, nil, nil, &fakeInspector{})

	b.handleCommand(context.Background(), commandMessage("/inspect somesignature", 8))
	require.Equal(t, "No swap details found for this transaction.", api.lastText(t))
}

func TestParseCallback(t *testing.T) {
	cases := []struct {
		data       string
		wantAction string
		wantLimit  int
		wantWallet string
		wantOK     bool
	}{
		{"worth_walletA", "worth", 1, "walletA", true},
		{"memecoins_1_walletA", "memecoins", 1, "walletA", true},
		{"memecoins_3_walletA", "memecoins", 3, "walletA", true},
		{"frequency_walletA", "frequency", 1, "walletA", true},
		{"memecoins_walletA", "", 0, "", false},
		{"memecoins_0_walletA", "", 0, "", false},
		{"memecoins_x_walletA", "", 0, "", false},
		{"selfdestruct_walletA", "", 0, "", false},
		{"worth", "", 0, "", false},
		{"", "", 0, "", false},
	}
	for _, tc := range cases {
		action, limit, wallet, ok := parseCallback(tc.data)
		require.Equal(t, tc.wantOK, ok, tc.data)
		require.Equal(t, tc.wantAction, action, tc.data)
		require.Equal(t, tc.wantLimit, limit, tc.data)
		require.Equal(t, tc.wantWallet, wallet, tc.data)
	}
}

func TestAnswer_Worth(t *testing.T) {
	b := newTestBot(&fakeAPI{}, nil, &fakeSnapshots{sol: 3.5, total: 8.527}, nil)

	text, err := b.answer(context.Background(), "worth", 1, "walletA")
	require.NoError(t, err)
	require.Equal(t, "SOL Holdings: 3.50 SOL\nTotal Wallet Worth: 8.53 (in SOL equivalent)", text)
}

func TestAnswer_MemecoinsEmpty(t *testing.T) {
	b := newTestBot(&fakeAPI{}, nil, &fakeSnapshots{}, nil)

	text, err := b.answer(context.Background(), "memecoins", 3, "walletA")
	require.NoError(t, err)
	require.Equal(t, "No recent memecoin transactions found.", text)
}

func TestAnswer_MemecoinsSingular(t *testing.T) {
	b := newTestBot(&fakeAPI{}, nil, &fakeSnapshots{transfers: []string{"msg-one"}}, nil)

	text, err := b.answer(context.Background(), "memecoins", 1, "walletA")
	require.NoError(t, err)
	require.Equal(t, "Latest 1 Memecoin Transaction:\n\nmsg-one", text)
}

func TestAnswer_MemecoinsPlural(t *testing.T) {
	b := newTestBot(&fakeAPI{}, nil, &fakeSnapshots{transfers: []string{"msg-one", "msg-two"}}, nil)

	text, err := b.answer(context.Background(), "memecoins", 3, "walletA")
	require.NoError(t, err)
	require.Equal(t, "Latest 3 Memecoin Transactions:\n\nmsg-one\n\nmsg-two", text)
}

func TestAnswer_Frequency(t *testing.T) {
	b := newTestBot(&fakeAPI{}, nil, &fakeSnapshots{frequency: 7}, nil)

	text, err := b.answer(context.Background(), "frequency", 1, "walletA")
	require.NoError(t, err)
	require.Equal(t, "Transaction Frequency: 7 transactions per day", text)
}

func TestCallback_EditsLoadingThenResult(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, nil, &fakeSnapshots{sol: 1, total: 2}, nil)

	b.handleCallback(context.Background(), &tgbotapi.CallbackQuery{
		ID:   "cq1",
		Data: "worth_walletA",
		Message: &tgbotapi.Message{
			MessageID: 99,
			Chat:      &tgbotapi.Chat{ID: 1},
		},
	})

	require.Len(t, api.sent, 2)
	loading, ok := api.sent[0].(tgbotapi.EditMessageTextConfig)
	require.True(t, ok)
	require.Equal(t, loadingText, loading.Text)

	final, ok := api.sent[1].(tgbotapi.EditMessageTextConfig)
	require.True(t, ok)
	require.Equal(t, "SOL Holdings: 1.00 SOL\nTotal Wallet Worth: 2.00 (in SOL equivalent)", final.Text)
	require.Equal(t, tgbotapi.ModeMarkdown, final.ParseMode)
	require.True(t, final.DisableWebPagePreview)
	require.NotNil(t, final.ReplyMarkup)
}

func TestCallback_MalformedDataIsIgnored(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, nil, nil, nil)

	b.handleCallback(context.Background(), &tgbotapi.CallbackQuery{
		ID:   "cq1",
		Data: "selfdestruct_walletA",
		Message: &tgbotapi.Message{
			MessageID: 99,
			Chat:      &tgbotapi.Chat{ID: 1},
		},
	})
	require.Empty(t, api.sent)
}
