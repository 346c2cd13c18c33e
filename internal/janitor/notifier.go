package janitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/sydlexius/janitor/internal/event"
	"github.com/sydlexius/janitor/internal/kodi"
)

// notifyTimeout bounds a single notification round trip.
const notifyTimeout = 10 * time.Second

// Notifier shows run results on the Kodi screen.
type Notifier struct {
	host     Host
	settings SettingsLoader
	logger   *slog.Logger
}

// NewNotifier creates a notifier.
func NewNotifier(host Host, loader SettingsLoader, logger *slog.Logger) *Notifier {
	return &Notifier{
		host:     host,
		settings: loader,
		logger:   logger.With(slog.String("component", "notifier")),
	}
}

// Register subscribes the notifier to bus.
func (n *Notifier) Register(bus *event.Bus) {
	bus.Subscribe(event.RunCompleted, n.HandleEvent)
	bus.Subscribe(event.MoveFailed, n.HandleEvent)
}

// HandleEvent sends a notification for e when the user wants one. Runs
// that cleaned nothing stay silent.
func (n *Notifier) HandleEvent(e event.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	msg, _ := e.Data["message"].(string)
	if msg == "" || msg == NothingToDo {
		return
	}

	st, err := n.settings.Load(ctx)
	if err != nil {
		n.logger.Warn("loading settings for notification", slog.Any("error", err))
		return
	}
	if !st.NotificationsEnabled {
		return
	}
	if st.NotifyWhenIdle {
		playing, err := n.host.IsPlaying(ctx)
		if err != nil {
			n.logger.Warn("checking playback before notifying", slog.Any("error", err))
			return
		}
		if playing {
			n.logger.Debug("suppressing notification during playback", slog.String("type", string(e.Type)))
			return
		}
	}

	title := "Janitor"
	if e.Type == event.RunCompleted {
		msg = "Cleaned " + msg
	}
	if err := n.host.Notify(ctx, kodi.Notification{Title: title, Message: msg}); err != nil {
		n.logger.Warn("sending notification", slog.Any("error", err))
	}
}
