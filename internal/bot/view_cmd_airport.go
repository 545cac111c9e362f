package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"github.com/kovalyov-valentin/airport-news-feed/internal/botkit"
	"github.com/kovalyov-valentin/airport-news-feed/internal/botkit/markup"
	"github.com/kovalyov-valentin/airport-news-feed/internal/model"
	"github.com/kovalyov-valentin/airport-news-feed/internal/newsfeed"
)

const previewSize = 5

type FeedService interface {
	Feed(ctx context.Context, code string) (newsfeed.Result, error)
}

// /airport IST - несколько последних новостей по аэропорту
func ViewCmdAirport(feeds FeedService) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		code := newsfeed.NormalizeCode(update.Message.CommandArguments())
		if code == "" {
			return reply(bot, update, "Usage: `/airport IST`")
		}

		res, err := feeds.Feed(ctx, code)
		if err != nil {
			return err
		}

		switch {
		case res.Status == newsfeed.StatusAirportNotFound:
			return reply(bot, update, fmt.Sprintf("Airport %s not found", markup.EscapeForMarkdown(code)))
		case res.Status == newsfeed.StatusNoTags:
			return reply(bot, update, fmt.Sprintf("Airport %s has no tags", markup.EscapeForMarkdown(code)))
		case len(res.Records) == 0:
			return reply(bot, update, fmt.Sprintf("No news for %s yet", markup.EscapeForMarkdown(code)))
		}

		lines := lo.Map(lo.Slice(res.Records, 0, previewSize), func(r model.NewsRecord, _ int) string {
			return formatHeadline(r)
		})

		return reply(bot, update, fmt.Sprintf(
			"%s \\(%d total\\)\n\n%s",
			markup.Bold(code),
			len(res.Records),
			strings.Join(lines, "\n\n"),
		))
	}
}

func formatHeadline(r model.NewsRecord) string {
	title := r.Title
	if title == "" {
		title = r.Link
	}

	line := markup.Bold(title) + "\n" + markup.Link("Read more", r.Link)
	if r.PublishedDate != nil {
		line += "\n" + markup.EscapeForMarkdown(*r.PublishedDate)
	}

	return line
}
