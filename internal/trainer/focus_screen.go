package trainer

import (
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
)

// FocusScreen is a tcell.Screen that tracks terminal focus reports.
// Until the terminal reports focus the window counts as unfocused, so
// terminals without focus reporting still get desktop notifications.
type FocusScreen struct {
	tcell.Screen
	focused atomic.Bool
}

func NewFocusScreen(screen tcell.Screen) *FocusScreen {
	if screen == nil {
		panic("FocusScreen: screen cannot be nil")
	}
	return &FocusScreen{Screen: screen}
}

// Init initializes the wrapped screen and turns on focus reporting.
func (s *FocusScreen) Init() error {
	if err := s.Screen.Init(); err != nil {
		return err
	}
	s.Screen.EnableFocus()
	return nil
}

// PollEvent records focus changes before handing the event on.
func (s *FocusScreen) PollEvent() tcell.Event {
	event := s.Screen.PollEvent()
	if focus, ok := event.(*tcell.EventFocus); ok {
		s.focused.Store(focus.Focused)
	}
	return event
}

// Focused reports whether the terminal window has focus.
func (s *FocusScreen) Focused() bool {
	return s.focused.Load()
}
