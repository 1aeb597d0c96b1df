package dashboard

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Severity classifies a toast notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Toast is a transient status message.
type Toast struct {
	ID       string   `json:"id"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Visible  bool     `json:"visible"`
}

// toaster holds at most one toast. Showing a new toast replaces the pending
// one and restarts the dismiss timer.
type toaster struct {
	mu        sync.Mutex
	delay     time.Duration
	current   Toast
	timer     *time.Timer
	onDismiss func(Toast)
}

func newToaster(delay time.Duration, onDismiss func(Toast)) *toaster {
	if delay <= 0 {
		delay = DefaultToastDelay
	}
	return &toaster{delay: delay, onDismiss: onDismiss}
}

func (t *toaster) show(message string, severity Severity) Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
	toast := Toast{
		ID:       uuid.NewString(),
		Message:  message,
		Severity: severity,
		Visible:  true,
	}
	t.current = toast
	id := toast.ID
	t.timer = time.AfterFunc(t.delay, func() { t.dismiss(id) })
	return toast
}

func (t *toaster) dismiss(id string) {
	t.mu.Lock()
	if t.current.ID != id || !t.current.Visible {
		t.mu.Unlock()
		return
	}
	t.current.Visible = false
	dismissed := t.current
	t.mu.Unlock()
	if t.onDismiss != nil {
		t.onDismiss(dismissed)
	}
}

func (t *toaster) snapshot() Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

func (t *toaster) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
}
