package trainer

import "github.com/lowaak/interval-trainer/internal/plans"

// UIMode represents the current UI mode/screen
type UIMode int

const (
	UIModePlanSelection UIMode = iota // Plan list and phase breakdown
	UIModeSession                     // Live countdown and controls
)

// UIModeInfo contains display information for a UI mode
type UIModeInfo struct {
	Mode        UIMode
	DisplayName string
	KeyBinding  rune // The number key to activate this mode (1-9)
}

// AllUIModes defines all available UI modes in order
var AllUIModes = []UIModeInfo{
	{Mode: UIModePlanSelection, DisplayName: "Plan Selection", KeyBinding: '1'},
	{Mode: UIModeSession, DisplayName: "Session", KeyBinding: '2'},
}

// GetUIModeByKey returns the mode for a given key binding
func GetUIModeByKey(key rune) (UIMode, bool) {
	for _, info := range AllUIModes {
		if info.KeyBinding == key {
			return info.Mode, true
		}
	}
	return 0, false
}

// GetUIModeInfo returns the info for a given mode
func GetUIModeInfo(mode UIMode) (UIModeInfo, bool) {
	for _, info := range AllUIModes {
		if info.Mode == mode {
			return info, true
		}
	}
	return UIModeInfo{}, false
}

// Session key bindings
const (
	KeyToggleSession = ' '
	KeyResetSession  = 'r'
)

// upcomingRows is how many upcoming phases the session page lists.
const upcomingRows = 3

// kindColor is the tview color tag for a phase kind.
func kindColor(kind plans.Kind) string {
	switch kind {
	case plans.KindRun:
		return "red"
	case plans.KindWalk:
		return "green"
	default:
		return "white"
	}
}
