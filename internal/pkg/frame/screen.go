package frame

// Screen identifies one rendered frame state. The value doubles as the
// image path segment under /api/og.
type Screen string

const (
	ScreenEntry          Screen = "entry"
	ScreenEnterAddress   Screen = "enter-address"
	ScreenInvalidAddress Screen = "invalid-address"
	ScreenNotMember      Screen = "not-member"
	ScreenSuccess        Screen = "success"
	ScreenError          Screen = "error"
	ScreenAlreadyOptedIn Screen = "already-opted-in"
)

// Screens lists every screen in display order.
var Screens = []Screen{
	ScreenEntry,
	ScreenEnterAddress,
	ScreenInvalidAddress,
	ScreenNotMember,
	ScreenSuccess,
	ScreenError,
	ScreenAlreadyOptedIn,
}

// ParseScreen maps an image path segment back to a screen.
func ParseScreen(name string) (Screen, bool) {
	if name == "" {
		return ScreenEntry, true
	}
	for _, s := range Screens {
		if string(s) == name {
			return s, true
		}
	}
	return "", false
}
