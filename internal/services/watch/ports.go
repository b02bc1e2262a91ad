package watch

import "context"

// Source yields the latest raw listing document.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Notifier delivers one rendered message; the key travels along for log
// context and failure diagnosis.
type Notifier interface {
	Send(ctx context.Context, key, text string) error
}
