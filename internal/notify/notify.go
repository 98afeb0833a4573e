// Package notify holds shutter's single transient status message.
//
// Components publish notifications by returning the commands built by
// Success, Error, and Info. Each command yields a ShowMsg on the Bubble Tea
// event loop, and the root model hands every ShowMsg to its Center. A newer
// notification overwrites the current one and restarts the countdown. When
// the countdown elapses the center falls back to the empty notification.
package notify

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 5 * time.Second

// Severity classifies a notification for display.
type Severity int

const (
	SeverityNeutral Severity = iota
	SeveritySuccess
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityError:
		return "error"
	default:
		return "neutral"
	}
}

// Notification is a user-facing status message.
type Notification struct {
	Text     string
	Severity Severity
}

// IsZero reports whether nothing is being shown.
func (n Notification) IsZero() bool {
	return n.Text == ""
}

// ShowMsg asks the Center to display a notification.
type ShowMsg struct {
	Notification Notification
}

// expiredMsg marks the end of the countdown started by show number gen.
type expiredMsg struct {
	gen uint64
}

// Publish returns a command that emits a ShowMsg.
func Publish(text string, severity Severity) tea.Cmd {
	n := Notification{Text: text, Severity: severity}
	return func() tea.Msg {
		return ShowMsg{Notification: n}
	}
}

// Success publishes a success notification.
func Success(text string) tea.Cmd { return Publish(text, SeveritySuccess) }

// Error publishes an error notification.
func Error(text string) tea.Cmd { return Publish(text, SeverityError) }

// Info publishes a neutral notification.
func Info(text string) tea.Cmd { return Publish(text, SeverityNeutral) }

// Center owns the current notification and its expiry.
type Center struct {
	clock   clockwork.Clock
	ttl     time.Duration
	current Notification
	gen     uint64
}

// New creates a Center timing expiry with clock. A nil clock uses real time.
func New(clock clockwork.Clock) Center {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return Center{clock: clock, ttl: DefaultTTL}
}

// Current returns the notification on display, or the zero value.
func (c Center) Current() Notification {
	return c.current
}

// Show replaces the current notification and returns the command that
// clears it once the TTL passes.
func (c Center) Show(n Notification) (Center, tea.Cmd) {
	c.current = n
	c.gen++
	return c, c.expireAfter(c.gen)
}

// Update handles ShowMsg and expiry messages; everything else is ignored.
func (c Center) Update(msg tea.Msg) (Center, tea.Cmd) {
	switch msg := msg.(type) {
	case ShowMsg:
		return c.Show(msg.Notification)
	case expiredMsg:
		// A superseded countdown carries an older generation.
		if msg.gen == c.gen {
			c.current = Notification{}
		}
	}
	return c, nil
}

func (c Center) expireAfter(gen uint64) tea.Cmd {
	clock, ttl := c.clock, c.ttl
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return func() tea.Msg {
		<-clock.After(ttl)
		return expiredMsg{gen: gen}
	}
}
