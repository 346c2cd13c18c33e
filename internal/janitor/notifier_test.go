package janitor

import (
	"testing"

	"github.com/sydlexius/janitor/internal/event"
	"github.com/sydlexius/janitor/internal/settings"
)

func TestNotifier(t *testing.T) {
	completed := event.Event{Type: event.RunCompleted, Data: map[string]any{"message": "1 movie"}}
	tests := []struct {
		name    string
		enabled bool
		idle    bool
		playing bool
		event   event.Event
		want    string
	}{
		{name: "completed", enabled: true, event: completed, want: "Cleaned 1 movie"},
		{name: "disabled", enabled: false, event: completed},
		{name: "nothing to do", enabled: true, event: event.Event{Type: event.RunCompleted, Data: map[string]any{"message": NothingToDo}}},
		{name: "suppressed while playing", enabled: true, idle: true, playing: true, event: completed},
		{name: "playing but idle not required", enabled: true, idle: false, playing: true, event: completed, want: "Cleaned 1 movie"},
		{name: "move failed", enabled: true, event: event.Event{Type: event.MoveFailed, Data: map[string]any{"message": "could not move Foo"}}, want: "could not move Foo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := settings.Defaults()
			st.NotificationsEnabled = tt.enabled
			st.NotifyWhenIdle = tt.idle
			host := &fakeHost{playing: tt.playing}
			n := NewNotifier(host, &fakeLoader{s: st}, testLogger())

			n.HandleEvent(tt.event)

			if tt.want == "" {
				if len(host.notified) != 0 {
					t.Errorf("notified = %+v, want none", host.notified)
				}
				return
			}
			if len(host.notified) != 1 || host.notified[0].Message != tt.want || host.notified[0].Title != "Janitor" {
				t.Errorf("notified = %+v, want %q", host.notified, tt.want)
			}
		})
	}
}

func TestNotifier_Register(t *testing.T) {
	st := settings.Defaults()
	st.NotificationsEnabled = true
	st.NotifyWhenIdle = false
	host := &fakeHost{}
	bus := event.NewBus(testLogger(), 8)
	NewNotifier(host, &fakeLoader{s: st}, testLogger()).Register(bus)

	bus.Publish(event.Event{Type: event.RunCompleted, Data: map[string]any{"message": "2 episodes"}})
	bus.Publish(event.Event{Type: event.VideoCleaned, Data: map[string]any{"message": "ignored"}})
	bus.Stop()
	bus.Start(t.Context())

	if len(host.notified) != 1 || host.notified[0].Message != "Cleaned 2 episodes" {
		t.Errorf("notified = %+v", host.notified)
	}
}
