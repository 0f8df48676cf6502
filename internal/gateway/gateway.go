package gateway

import (
	"github.com/rahul/sutra/internal/agent"
)

// Messenger defines the interface for communication gateways (Telegram, Discord, etc.)
type Messenger interface {
	// Start begins the message listening loop
	Start() error
	// Send sends a message to a specific owner (chat or channel ID)
	Send(owner string, text string) error
	// Stop gracefully shuts down the gateway
	Stop() error
}

// Telegram and Discord cap message sizes around 4096/2000; stay under both
// consumers' limits by splitting on this boundary.
const maxMessageLength = 1900

// splitMessage breaks text into chunks a gateway can deliver.
func splitMessage(text string) []string {
	if len(text) <= maxMessageLength {
		return []string{text}
	}
	var chunks []string
	for len(text) > maxMessageLength {
		chunks = append(chunks, text[:maxMessageLength])
		text = text[maxMessageLength:]
	}
	if len(text) > 0 {
		chunks = append(chunks, text)
	}
	return chunks
}

type messengerNotifier struct {
	m Messenger
}

// AsNotifier adapts a Messenger for scheduled task delivery.
func AsNotifier(m Messenger) agent.Notifier {
	return messengerNotifier{m: m}
}

func (n messengerNotifier) Notify(owner string, message string) error {
	return n.m.Send(owner, message)
}
