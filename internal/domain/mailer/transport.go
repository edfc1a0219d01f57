package mailer

import "context"

// Transport defines the contract for a mail delivery channel.
// Implementations live in infra/email.
type Transport interface {
	// Send delivers a rendered message. Exactly one attempt per call; retries,
	// if desired, are the caller's responsibility.
	Send(ctx context.Context, msg *Message) error

	// Verify performs a transport handshake without sending anything.
	Verify(ctx context.Context) error
}

// Renderer defines the contract for rendering notification emails.
// Implementations live in infra/template.
type Renderer interface {
	// Render produces a subject line and a full HTML document for the given
	// event kind.
	Render(kind EventKind, data any) (subject, html string, err error)
}

// RecipientRateLimiter defines the contract for per-recipient rate limiting
// on the public endpoints. Implementations live in infra/ratelimit.
type RecipientRateLimiter interface {
	// Allow reports whether a notification may be sent to the given recipient.
	Allow(ctx context.Context, recipient string) (bool, error)
}
