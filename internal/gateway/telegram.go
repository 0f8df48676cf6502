package gateway

import (
	"context"
	"fmt"
	"log"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type TelegramGateway struct {
	Bot        *tgbotapi.BotAPI
	Dispatcher *Dispatcher
}

func NewTelegramGateway(token string, dispatcher *Dispatcher) (*TelegramGateway, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	return &TelegramGateway{
		Bot:        bot,
		Dispatcher: dispatcher,
	}, nil
}

func (tg *TelegramGateway) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := tg.Bot.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}

		log.Printf("[%s] %s", update.Message.From.UserName, update.Message.Text)

		owner := fmt.Sprintf("%d", update.Message.Chat.ID)
		reply := tg.Dispatcher.Handle(context.Background(), owner, update.Message.Text)
		if reply == "" {
			continue
		}
		if err := tg.Send(owner, reply); err != nil {
			log.Printf("failed to send telegram reply: %v", err)
		}
	}
	return nil
}

func (tg *TelegramGateway) Send(owner string, text string) error {
	id, err := strconv.ParseInt(owner, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat ID %q: %w", owner, err)
	}

	for _, chunk := range splitMessage(text) {
		msg := tgbotapi.NewMessage(id, chunk)
		if _, err := tg.Bot.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

func (tg *TelegramGateway) Stop() error {
	tg.Bot.StopReceivingUpdates()
	return nil
}
