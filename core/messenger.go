package core

// Messenger is any service that can push a short text message to a driver's chat.
// Decouples the notification flow from the actual bot library.
type Messenger interface {
	SendMessage(chatID int64, text string) error
}
