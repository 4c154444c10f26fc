package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Guliveer/kick-watcher-go/internal/constants"
	"github.com/Guliveer/kick-watcher-go/pkg/events"
)

// kickGreen is the embed colour used for all Discord messages.
const kickGreen = 0x53FC18

// Discord sends notifications via a Discord webhook.
type Discord struct {
	baseNotifier
	webhookURL string
	httpClient *http.Client
}

type discordMessage struct {
	Username string         `json:"username"`
	Embeds   []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	URL         string         `json:"url,omitempty"`
	Description string         `json:"description"`
	Color       int            `json:"color"`
	Fields      []discordField `json:"fields,omitempty"`
	Footer      discordFooter  `json:"footer"`
	Timestamp   string         `json:"timestamp"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordFooter struct {
	Text string `json:"text"`
}

// Send posts an embed for the event to the configured Discord webhook. The
// title is the channel slug and links to the channel page.
func (d *Discord) Send(ctx context.Context, kind events.Kind, title, message string) error {
	payload := discordMessage{
		Username: "Kick Watcher",
		Embeds: []discordEmbed{{
			Title:       title,
			URL:         channelURL(title),
			Description: message,
			Color:       kickGreen,
			Fields: []discordField{
				{Name: "Channel", Value: title, Inline: true},
				{Name: "Event", Value: string(kind), Inline: true},
			},
			Footer:    discordFooter{Text: "kickwatch"},
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("discord: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("discord: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("discord: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("discord: unexpected status %d", resp.StatusCode)
	}

	return nil
}

func channelURL(channel string) string {
	if channel == "" {
		return ""
	}
	return constants.KickURL + "/" + url.PathEscape(channel)
}
