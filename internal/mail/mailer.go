package mail

import "context"

type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers a plain-text message. Implementations may fail independently
// of the rest of the request; callers decide what to roll back.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
