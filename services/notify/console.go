package notifysvc

import (
	"fmt"
	"log"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kalenda/core"
)

var (
	SentNotifications = make([]core.Notification, 0)
	mu                sync.Mutex
)

// consoleService prints notifications to the log. It is the default
// Notifier in development and tests.
type consoleService struct {
	defaultFromEmail mail.Address
	subjPrefix       string
	disableOutput    bool
}

var _ core.Notifier = (*consoleService)(nil)

func NewConsoleService(conf *core.Config) core.Notifier {
	return &consoleService{
		defaultFromEmail: conf.DefaultFromEmail,
		subjPrefix:       "[" + conf.AppName + "] ",
	}
}

func (svc consoleService) Send(notifications ...*core.Notification) {
	for _, n := range notifications {
		go svc.sendNotification(n)
	}
}

func (svc consoleService) sendNotification(n *core.Notification) {
	if err := n.Render(); err != nil {
		log.Fatalf("%+v", errors.Wrap(err, "rendering notification"))
	}
	if n.HasRecipients() && n.HasContent() {
		svc.send(*n)
		mu.Lock()
		SentNotifications = append(SentNotifications, *n)
		mu.Unlock()
	}
}

func (svc consoleService) send(n core.Notification) {
	body := new(strings.Builder)

	_, _ = fmt.Fprintf(body, "From: %s\r\n", svc.defaultFromEmail.String())
	_, _ = fmt.Fprintf(body, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	_, _ = fmt.Fprintf(body, "Subject: %s\r\n", svc.subjPrefix+n.Subject)
	_, _ = fmt.Fprintf(body, "To: %s\r\n", svc.joinAddresses(n.To))
	_, _ = fmt.Fprintf(body, "CC: %s\r\n", svc.joinAddresses(n.Cc))
	_, _ = fmt.Fprint(body, "\r\n")
	_, _ = fmt.Fprintf(body, "%s\r\n", n.TextContent)

	if !svc.disableOutput {
		log.Println(body.String())
	}
}

func (svc consoleService) joinAddresses(addrs []mail.Address) string {
	toJoin := make([]string, 0, len(addrs))
	for _, a := range addrs {
		toJoin = append(toJoin, a.String())
	}
	return strings.Join(toJoin, ", ")
}

type consoleServiceMock struct {
	consoleService
}

func NewConsoleServiceMock(conf *core.Config) core.Notifier {
	return &consoleServiceMock{
		consoleService: consoleService{
			defaultFromEmail: conf.DefaultFromEmail,
			subjPrefix:       "[" + conf.AppName + "] ",
			disableOutput:    true,
		},
	}
}

func (svc *consoleServiceMock) Send(notifications ...*core.Notification) {
	for _, n := range notifications {
		// run synchronously
		svc.sendNotification(n)
	}
}
