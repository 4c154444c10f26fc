package server

import (
	"embed"
	"html/template"
	"net/url"
	"time"

	"github.com/Guliveer/kick-watcher-go/internal/constants"
)

// staticFiles is served as-is under /static/; embedded paths already carry
// the prefix.
//
//go:embed static
var staticFiles embed.FS

//go:embed templates
var templateFiles embed.FS

var dashboardTemplate = template.Must(template.ParseFS(templateFiles, "templates/dashboard.html"))

// dashboardRefresh is how often the page polls the JSON API.
const dashboardRefresh = 3 * time.Second

type dashboardData struct {
	Channel    string
	ChannelURL string
	RefreshMS  int64
}

func newDashboardData(channel string) dashboardData {
	return dashboardData{
		Channel:    channel,
		ChannelURL: constants.KickURL + "/" + url.PathEscape(channel),
		RefreshMS:  dashboardRefresh.Milliseconds(),
	}
}
