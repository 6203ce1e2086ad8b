package frame

import (
	"fmt"
	"strings"
)

// Version is the frame protocol tag.
const Version = "vNext"

// Response is the frame description returned to the client.
type Response struct {
	Version   string `json:"fc:frame"`
	Image     string `json:"fc:frame:image"`
	PostURL   string `json:"fc:frame:post_url"`
	InputText string `json:"fc:frame:input:text,omitempty"`
	Button1   string `json:"fc:frame:button:1"`
}

// Builder turns screens into responses with absolute URLs.
type Builder struct {
	BaseURL string
	Channel string
}

func NewBuilder(baseURL, channel string) *Builder {
	return &Builder{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Channel: channel,
	}
}

// ImageURL is the absolute URL of the screen's card image.
func (b *Builder) ImageURL(s Screen) string {
	if s == ScreenEntry {
		return b.BaseURL + "/api/og"
	}
	return b.BaseURL + "/api/og/" + string(s)
}

// PostURL is where the client sends the next interaction.
func (b *Builder) PostURL() string {
	return b.BaseURL + "/api/frame"
}

func (b *Builder) Build(s Screen) Response {
	r := Response{
		Version: Version,
		Image:   b.ImageURL(s),
		PostURL: b.PostURL(),
	}
	switch s {
	case ScreenEnterAddress:
		r.InputText = "Enter your ETH wallet address"
		r.Button1 = "Submit"
	case ScreenInvalidAddress:
		r.InputText = "Enter a valid ETH address (0x...)"
		r.Button1 = "Try Again"
	case ScreenNotMember:
		r.Button1 = fmt.Sprintf("Join /%s Channel First", b.Channel)
	case ScreenSuccess:
		r.Button1 = "Successfully Opted In! 🎉"
	case ScreenAlreadyOptedIn:
		r.Button1 = "Already Opted In ✅"
	case ScreenError:
		r.Button1 = "Try Again"
	default:
		r.Button1 = "Opt into Airdrop"
	}
	return r
}

// MetaTag is one <meta property content> pair for the embed page.
type MetaTag struct {
	Property string
	Content  string
}

// MetaTags renders the response as the meta tags clients read from the
// page a frame is shared from.
func (r Response) MetaTags() []MetaTag {
	tags := []MetaTag{
		{Property: "fc:frame", Content: r.Version},
		{Property: "fc:frame:image", Content: r.Image},
		{Property: "fc:frame:post_url", Content: r.PostURL},
	}
	if r.InputText != "" {
		tags = append(tags, MetaTag{Property: "fc:frame:input:text", Content: r.InputText})
	}
	tags = append(tags, MetaTag{Property: "fc:frame:button:1", Content: r.Button1})
	return tags
}
