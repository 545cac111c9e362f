package bot

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"github.com/kovalyov-valentin/airport-news-feed/internal/botkit"
	"github.com/kovalyov-valentin/airport-news-feed/internal/botkit/markup"
	"github.com/kovalyov-valentin/airport-news-feed/internal/model"
)

type SourceStorage interface {
	Add(ctx context.Context, source model.Source) error
}

type SourceLister interface {
	Sources(ctx context.Context) ([]model.Source, error)
}

type SourceDeleter interface {
	Delete(ctx context.Context, feedURL string) (bool, error)
}

// /addsource {"name": "...", "url": "..."}
func ViewCmdAddSource(storage SourceStorage) botkit.ViewFunc {
	type addSourceArgs struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}

	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		args, err := botkit.ParseJSON[addSourceArgs](update.Message.CommandArguments())
		if err != nil {
			return reply(bot, update, "Usage: `/addsource {\"name\": \"Simple Flying\", \"url\": \"https://simpleflying.com/feed/\"}`")
		}

		feedURL := strings.TrimSpace(args.URL)
		if !validFeedURL(feedURL) {
			return reply(bot, update, "Invalid feed url")
		}

		if err := storage.Add(ctx, model.Source{Name: strings.TrimSpace(args.Name), FeedURL: feedURL}); err != nil {
			return err
		}

		return reply(bot, update, fmt.Sprintf("Source added: %s", markup.EscapeForMarkdown(feedURL)))
	}
}

func ViewCmdListSources(lister SourceLister) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		sources, err := lister.Sources(ctx)
		if err != nil {
			return err
		}

		if len(sources) == 0 {
			return reply(bot, update, "No sources yet")
		}

		sourceInfos := lo.Map(sources, func(source model.Source, _ int) string {
			return formatSource(source)
		})

		return reply(bot, update, fmt.Sprintf(
			"Sources \\(total %d\\):\n\n%s",
			len(sources),
			strings.Join(sourceInfos, "\n\n"),
		))
	}
}

// /deletesource https://example.com/feed
func ViewCmdDeleteSource(deleter SourceDeleter) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		feedURL := strings.TrimSpace(update.Message.CommandArguments())
		if feedURL == "" {
			return reply(bot, update, "Usage: `/deletesource <feed url>`")
		}

		deleted, err := deleter.Delete(ctx, feedURL)
		if err != nil {
			return err
		}

		if !deleted {
			return reply(bot, update, fmt.Sprintf("Source %s not found", markup.EscapeForMarkdown(feedURL)))
		}

		return reply(bot, update, fmt.Sprintf("Source %s deleted", markup.EscapeForMarkdown(feedURL)))
	}
}

func formatSource(source model.Source) string {
	name := source.Name
	if name == "" {
		name = source.FeedURL
	}

	return fmt.Sprintf(
		"🌐 %s\nFeed URL: %s",
		markup.Bold(name),
		markup.EscapeForMarkdown(source.FeedURL),
	)
}

func validFeedURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func reply(bot *tgbotapi.BotAPI, update tgbotapi.Update, text string) error {
	msg := tgbotapi.NewMessage(update.Message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true

	_, err := bot.Send(msg)
	return err
}
