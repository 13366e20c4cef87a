package infrastructure

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"gatewaymonitor/events"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Embed colors
const (
	ColorSuccess = 0x57F287 // Green
	ColorDanger  = 0xED4245 // Red
	ColorWarning = 0xFEE75C // Yellow
)

// WebhookExecutor executes a Discord webhook
type WebhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordAlertPublisher posts failure and deactivation alerts to a Discord webhook
type DiscordAlertPublisher struct {
	executor  WebhookExecutor
	webhookID string
	token     string
}

// NewDiscordAlertPublisher creates an alert publisher from a webhook URL
func NewDiscordAlertPublisher(webhookURL string) (*DiscordAlertPublisher, error) {
	webhookID, token, err := ParseDiscordWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}

	// Webhook execution is authorized by the token in the URL
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	return newDiscordAlertPublisher(session, webhookID, token), nil
}

func newDiscordAlertPublisher(executor WebhookExecutor, webhookID, token string) *DiscordAlertPublisher {
	return &DiscordAlertPublisher{
		executor:  executor,
		webhookID: webhookID,
		token:     token,
	}
}

// ParseDiscordWebhookURL extracts the webhook ID and token from
// https://discord.com/api[/vN]/webhooks/{id}/{token}
func ParseDiscordWebhookURL(raw string) (string, string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", fmt.Errorf("invalid Discord webhook URL: %w", err)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, segment := range segments {
		if segment == "webhooks" && i+2 < len(segments) {
			id, token := segments[i+1], segments[i+2]
			if id != "" && token != "" {
				return id, token, nil
			}
		}
	}

	return "", "", fmt.Errorf("invalid Discord webhook URL: expected /webhooks/{id}/{token}")
}

// Register subscribes the publisher to alert-worthy events
func (p *DiscordAlertPublisher) Register(bus *events.Bus) {
	bus.Subscribe(p.Handle,
		events.EventTypeFailureDetected,
		events.EventTypeDeactivationAttempted,
		events.EventTypeRunFailed,
	)
}

// Handle posts an embed for the event
func (p *DiscordAlertPublisher) Handle(ctx context.Context, event events.Event) error {
	embed := CreateAlertEmbed(event)
	if embed == nil {
		return nil
	}

	params := &discordgo.WebhookParams{
		Username: "Gateway Monitor",
		Embeds:   []*discordgo.MessageEmbed{embed},
	}

	if _, err := p.executor.WebhookExecute(p.webhookID, p.token, false, params, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to post Discord alert: %w", err)
	}

	log.WithField("eventType", event.Type()).Debug("Posted Discord alert")
	return nil
}

// CreateAlertEmbed builds the alert embed for an event, or nil when the event is not alerted
func CreateAlertEmbed(event events.Event) *discordgo.MessageEmbed {
	switch e := event.(type) {
	case events.FailureDetectedEvent:
		return &discordgo.MessageEmbed{
			Title:       fmt.Sprintf("Gateway failure detected: %s", e.Gateway),
			Color:       ColorWarning,
			Description: "Pending payments exceeded the threshold. Deactivating the gateway.",
			Timestamp:   e.DetectedAt.UTC().Format(time.RFC3339),
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Pending", Value: fmt.Sprintf("%d", e.PendingCount), Inline: true},
				{Name: "Threshold", Value: fmt.Sprintf("%d", e.Threshold), Inline: true},
			},
		}

	case events.DeactivationAttemptedEvent:
		embed := &discordgo.MessageEmbed{
			Title: fmt.Sprintf("Gateway deactivated: %s", e.Gateway),
			Color: ColorSuccess,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Outcome", Value: string(e.Outcome), Inline: true},
			},
		}
		if e.StatusCode != 0 {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Status", Value: fmt.Sprintf("%d", e.StatusCode), Inline: true})
		}
		if !e.Succeeded() {
			embed.Title = fmt.Sprintf("Gateway deactivation failed: %s", e.Gateway)
			embed.Color = ColorDanger
			if e.Error != "" {
				embed.Description = e.Error
			}
		}
		return embed

	case events.RunFailedEvent:
		return &discordgo.MessageEmbed{
			Title:       fmt.Sprintf("Gateway monitor run failed: %s", e.Gateway),
			Color:       ColorDanger,
			Description: e.Error,
		}
	}

	return nil
}
