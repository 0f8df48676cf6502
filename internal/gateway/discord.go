package gateway

import (
	"context"
	"log"

	"github.com/bwmarrin/discordgo"
)

type DiscordGateway struct {
	Session    *discordgo.Session
	Dispatcher *Dispatcher
	// Channel restricts the bot to one channel when set.
	Channel string

	done chan struct{}
}

func NewDiscordGateway(token string, channel string, dispatcher *Dispatcher) (*DiscordGateway, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	dg := &DiscordGateway{
		Session:    session,
		Dispatcher: dispatcher,
		Channel:    channel,
		done:       make(chan struct{}),
	}
	session.AddHandler(dg.onMessage)
	return dg, nil
}

// Start opens the websocket session and blocks until Stop is called.
func (dg *DiscordGateway) Start() error {
	if err := dg.Session.Open(); err != nil {
		return err
	}
	log.Printf("Authorized on account %s", dg.Session.State.User.Username)
	<-dg.done
	return nil
}

func (dg *DiscordGateway) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID {
		return
	}
	if dg.Channel != "" && m.ChannelID != dg.Channel {
		return
	}

	log.Printf("[%s] %s", m.Author.Username, m.Content)

	reply := dg.Dispatcher.Handle(context.Background(), m.ChannelID, m.Content)
	if reply == "" {
		return
	}
	if err := dg.Send(m.ChannelID, reply); err != nil {
		log.Printf("failed to send discord reply: %v", err)
	}
}

func (dg *DiscordGateway) Send(owner string, text string) error {
	for _, chunk := range splitMessage(text) {
		if _, err := dg.Session.ChannelMessageSend(owner, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (dg *DiscordGateway) Stop() error {
	close(dg.done)
	return dg.Session.Close()
}
