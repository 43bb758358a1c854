package notifications

import "context"

type Message struct {
	To     string
	ToName string

	Subject string
	HTML    string
	Text    string
}

// Sender delivers one transactional message. Implementations must abort the
// send when the context deadline passes.
type Sender interface {
	Send(ctx context.Context, m Message) error
}
