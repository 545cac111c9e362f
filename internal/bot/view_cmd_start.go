package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kovalyov-valentin/airport-news-feed/internal/botkit"
)

const helpText = `Airport news feed bot

/airport IST \- latest headlines for an airport
/listsources \- feeds we read
/addsource \{"name": "\.\.\.", "url": "\.\.\."\} \- add a feed \(admins\)
/deletesource <url\> \- remove a feed \(admins\)`

func ViewCmdStart() botkit.ViewFunc {
	return func(_ context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		return reply(bot, update, helpText)
	}
}
