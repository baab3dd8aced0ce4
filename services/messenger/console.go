package messengersvc

import (
	"fmt"
	"log"
	"sync"

	"github.com/trezcool/lori/core"
)

type SentMessage struct {
	ChatID int64
	Text   string
}

type consoleService struct {
	disableOutput bool

	mu   sync.Mutex
	sent []SentMessage
}

var _ core.Messenger = (*consoleService)(nil)

func NewConsoleService() *consoleService {
	return &consoleService{}
}

// NewConsoleServiceMock records messages without printing them.
func NewConsoleServiceMock() *consoleService {
	return &consoleService{disableOutput: true}
}

func (svc *consoleService) SendMessage(chatID int64, text string) error {
	svc.mu.Lock()
	svc.sent = append(svc.sent, SentMessage{ChatID: chatID, Text: text})
	svc.mu.Unlock()

	if !svc.disableOutput {
		log.Println(fmt.Sprintf("[chat %d] %s", chatID, text))
	}
	return nil
}

func (svc *consoleService) SentMessages() []SentMessage {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	sent := make([]SentMessage, len(svc.sent))
	copy(sent, svc.sent)
	return sent
}

// Reset drops recorded messages. Handy between test cases.
func (svc *consoleService) Reset() {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.sent = nil
}
