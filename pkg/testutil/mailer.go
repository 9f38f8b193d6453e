package testutil

import "context"

type SentMail struct {
	To      string
	Subject string
	Body    string
}

// MockMailer records sent mails instead of delivering them.
type MockMailer struct {
	Sent     []SentMail
	SendFunc func(ctx context.Context, to, subject, body string) error
}

func (m *MockMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, to, subject, body)
	}

	m.Sent = append(m.Sent, SentMail{To: to, Subject: subject, Body: body})
	return nil
}
