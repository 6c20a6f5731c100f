package app

import (
	"fmt"
	"io"
	"sync"
)

// ConsoleNotifier prints notifications when no chat host is configured.
type ConsoleNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsoleNotifier(out io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{out: out}
}

func (n *ConsoleNotifier) SendNotification(title, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, err := fmt.Fprintf(n.out, "\n%s\n%s\n", title, body)
	return err
}

// RequestPermission always grants; the config flag decides whether the
// prompt reaches this host at all.
func (n *ConsoleNotifier) RequestPermission() bool {
	return true
}
