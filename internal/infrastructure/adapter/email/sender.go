package email

import "context"

// Message is a single outbound email
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

// Sender delivers emails through a provider
type Sender interface {
	// Send delivers the message. Returns ErrEmailNotConfigured when the
	// provider credentials are absent.
	Send(ctx context.Context, msg Message) error
}
