package views

import (
	"embed"
	"io/fs"
	"net/http"
	"time"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates
var templatesFS embed.FS

// NewEngine returns the html template engine for the admin pages.
func NewEngine() *html.Engine {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("formatMillis", formatMillis)
	engine.AddFunc("formatTime", formatTime)
	engine.AddFunc("orDefault", orDefault)
	return engine
}

func formatMillis(ms int64) string {
	if ms <= 0 {
		return "N/A"
	}
	return formatTime(time.UnixMilli(ms))
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

func orDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
