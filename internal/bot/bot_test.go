package bot_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/kovalyov-valentin/airport-news-feed/internal/bot"
	"github.com/kovalyov-valentin/airport-news-feed/internal/bot/middleware"
	"github.com/kovalyov-valentin/airport-news-feed/internal/botkit"
	"github.com/kovalyov-valentin/airport-news-feed/internal/logger"
	"github.com/kovalyov-valentin/airport-news-feed/internal/matcher"
	"github.com/kovalyov-valentin/airport-news-feed/internal/model"
	"github.com/kovalyov-valentin/airport-news-feed/internal/newsfeed"
	"github.com/kovalyov-valentin/airport-news-feed/internal/storage/memstore"
)

const adminID = 42

// Имитация Bot API: отвечает на getMe, sendMessage и getChatAdministrators и запоминает отправленные тексты
type fakeTelegram struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"feed","username":"feed_bot"}}`))
	case strings.HasSuffix(r.URL.Path, "/getChatAdministrators"):
		_, _ = w.Write([]byte(`{"ok":true,"result":[{"user":{"id":42,"is_bot":false,"first_name":"admin"},"status":"administrator"}]}`))
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		_ = r.ParseForm()
		f.mu.Lock()
		f.sent = append(f.sent, r.PostForm.Get("text"))
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":7,"type":"private"}}}`))
	default:
		_, _ = w.Write([]byte(`{"ok":false,"error_code":404,"description":"Not Found"}`))
	}
}

func (f *fakeTelegram) last(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)

	return f.sent[len(f.sent)-1]
}

func newAPI(t *testing.T) (*tgbotapi.BotAPI, *fakeTelegram) {
	t.Helper()
	fake := &fakeTelegram{}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	api, err := tgbotapi.NewBotAPIWithClient("token", server.URL+"/bot%s/%s", server.Client())
	require.NoError(t, err)

	return api, fake
}

func command(text string, from int64) tgbotapi.Update {
	cmd := strings.SplitN(text, " ", 2)[0]

	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: 7},
		From:     &tgbotapi.User{ID: from},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}}
}

func TestAddListDeleteSource(t *testing.T) {
	ctx := context.Background()
	api, fake := newAPI(t)
	store := memstore.New()

	add := bot.ViewCmdAddSource(store)
	require.NoError(t, add(ctx, api, command(`/addsource {"name": "Simple Flying", "url": "https://simpleflying.com/feed/"}`, adminID)))
	require.Contains(t, fake.last(t), `Source added: https://simpleflying\.com/feed/`)

	sources, err := store.Sources(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"https://simpleflying.com/feed/"}, lo.Map(sources, func(s model.Source, _ int) string { return s.FeedURL }))

	require.NoError(t, add(ctx, api, command(`/addsource nope`, adminID)))
	require.Contains(t, fake.last(t), "Usage")

	require.NoError(t, add(ctx, api, command(`/addsource {"name": "x", "url": "ftp://x"}`, adminID)))
	require.Equal(t, "Invalid feed url", fake.last(t))

	require.NoError(t, bot.ViewCmdListSources(store)(ctx, api, command("/listsources", adminID)))
	require.Contains(t, fake.last(t), `Sources \(total 1\)`)
	require.Contains(t, fake.last(t), "*Simple Flying*")

	del := bot.ViewCmdDeleteSource(store)
	require.NoError(t, del(ctx, api, command("/deletesource https://simpleflying.com/feed/", adminID)))
	require.Contains(t, fake.last(t), "deleted")

	require.NoError(t, del(ctx, api, command("/deletesource https://simpleflying.com/feed/", adminID)))
	require.Contains(t, fake.last(t), "not found")

	require.NoError(t, bot.ViewCmdListSources(store)(ctx, api, command("/listsources", adminID)))
	require.Equal(t, "No sources yet", fake.last(t))
}

func TestAirportPreview(t *testing.T) {
	ctx := context.Background()
	api, fake := newAPI(t)

	store := memstore.New()
	require.NoError(t, store.UpsertAirports(ctx, []model.Airport{{IATACode: "IST", TagList: "Istanbul"}}))
	_, err := store.InsertMany(ctx, []model.NewsRecord{
		{Title: "Istanbul lounge", Body: "Istanbul lounge opens", Link: "https://example.com/1", PublishedDate: lo.ToPtr("2023-05-03")},
	})
	require.NoError(t, err)

	view := bot.ViewCmdAirport(newsfeed.NewService(store, store, matcher.Substring{}, true, logger.Discard()))

	require.NoError(t, view(ctx, api, command("/airport ist", adminID)))
	require.Contains(t, fake.last(t), `*IST* \(1 total\)`)
	require.Contains(t, fake.last(t), "*Istanbul lounge*")
	require.Contains(t, fake.last(t), "[Read more](https://example.com/1)")
	require.Contains(t, fake.last(t), `2023\-05\-03`)

	require.NoError(t, view(ctx, api, command("/airport XXX", adminID)))
	require.Equal(t, "Airport XXX not found", fake.last(t))

	require.NoError(t, view(ctx, api, command("/airport", adminID)))
	require.Contains(t, fake.last(t), "Usage")
}

func TestAdminOnly(t *testing.T) {
	ctx := context.Background()
	api, fake := newAPI(t)

	var called bool
	view := middleware.AdminOnly(-100, func(context.Context, *tgbotapi.BotAPI, tgbotapi.Update) error {
		called = true
		return nil
	})

	require.NoError(t, view(ctx, api, command("/addsource {}", 5)))
	require.False(t, called)
	require.Equal(t, "You are not allowed to run this command", fake.last(t))

	require.NoError(t, view(ctx, api, command("/addsource {}", adminID)))
	require.True(t, called)
}

func TestBotRouting(t *testing.T) {
	ctx := context.Background()
	api, fake := newAPI(t)

	b := botkit.New(api, logger.Discard())
	b.RegisterCmdView("start", bot.ViewCmdStart())
	b.RegisterCmdView("boom", func(context.Context, *tgbotapi.BotAPI, tgbotapi.Update) error {
		panic("unexpected")
	})
	b.RegisterCmdView("fail", func(context.Context, *tgbotapi.BotAPI, tgbotapi.Update) error {
		return context.DeadlineExceeded
	})

	b.HandleUpdate(ctx, command("/start", 1))
	require.Contains(t, fake.last(t), "Airport news feed bot")

	b.HandleUpdate(ctx, command("/fail", 1))
	require.Equal(t, "internal error", fake.last(t))

	require.NotPanics(t, func() { b.HandleUpdate(ctx, command("/boom", 1)) })

	// не команда и неизвестная команда игнорируются
	b.HandleUpdate(ctx, tgbotapi.Update{Message: &tgbotapi.Message{Text: "hello", Chat: &tgbotapi.Chat{ID: 7}}})
	b.HandleUpdate(ctx, command("/unknown", 1))
	b.HandleUpdate(ctx, tgbotapi.Update{})
	require.Equal(t, "internal error", fake.last(t))
}
