package views

import (
	"github.com/ManuelReschke/VibesDrop/internal/pkg/frame"
)

// LandingData feeds the public page the frame is shared from.
type LandingData struct {
	Channel string
	BaseURL string
	Frame   frame.Response
}

func (d LandingData) title() string {
	return "/" + d.Channel + " Airdrop Frame"
}

func (d LandingData) description() string {
	return "Opt into the /" + d.Channel + " channel airdrop"
}
