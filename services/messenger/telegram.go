package messengersvc

import (
	"time"

	"github.com/pkg/errors"
	"gopkg.in/telebot.v3"

	"github.com/trezcool/lori/core"
)

type telegramService struct {
	bot *telebot.Bot
}

var _ core.Messenger = (*telegramService)(nil)

func NewTelegramService() (*telegramService, error) {
	bot, err := telebot.NewBot(telebot.Settings{
		Token:  core.Conf.Telegram.BotToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating telegram bot")
	}
	return &telegramService{bot: bot}, nil
}

func (svc *telegramService) SendMessage(chatID int64, text string) error {
	_, err := svc.bot.Send(&telebot.User{ID: chatID}, text)
	return errors.Wrap(err, "sending telegram message")
}
