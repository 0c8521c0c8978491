package notifysvc

import (
	"net/mail"
	"testing"

	"github.com/trezcool/kalenda/core"
)

func testConfig() *core.Config {
	return &core.Config{
		AppName:          "Kalenda",
		DefaultFromEmail: mail.Address{Name: "Kalenda", Address: "noreply@kalenda.test"},
	}
}

func clearSentNotifications() {
	mu.Lock()
	SentNotifications = make([]core.Notification, 0)
	mu.Unlock()
}

func TestConsoleServiceMockSend(t *testing.T) {
	clearSentNotifications()
	svc := NewConsoleServiceMock(testConfig())

	n := &core.Notification{
		To:      []mail.Address{{Name: "Ms. Price", Address: "price@school.test"}},
		Subject: "Reschedule failed",
		BodyStr: "Fractions could not be moved to 12 Mar 2024.",
	}
	svc.Send(n)

	mu.Lock()
	defer mu.Unlock()
	if len(SentNotifications) != 1 {
		t.Fatalf("got %d sent notifications, want 1", len(SentNotifications))
	}
	sent := SentNotifications[0]
	if sent.Subject != n.Subject {
		t.Errorf("Subject = %q, want %q", sent.Subject, n.Subject)
	}
	if sent.TextContent != n.BodyStr {
		t.Errorf("TextContent = %q, want body %q", sent.TextContent, n.BodyStr)
	}
}

func TestConsoleServiceMockSendSkipsUndeliverable(t *testing.T) {
	clearSentNotifications()
	svc := NewConsoleServiceMock(testConfig())

	// no recipients
	svc.Send(&core.Notification{Subject: "Reschedule failed", BodyStr: "lost"})
	// no content
	svc.Send(&core.Notification{To: []mail.Address{{Address: "price@school.test"}}, Subject: "Reschedule failed"})

	mu.Lock()
	defer mu.Unlock()
	if len(SentNotifications) != 0 {
		t.Errorf("got %d sent notifications, want none", len(SentNotifications))
	}
}
