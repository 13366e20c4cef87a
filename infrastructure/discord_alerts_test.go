package infrastructure

import (
	"context"
	"errors"
	"testing"
	"time"

	"gatewaymonitor/events"
	"gatewaymonitor/models"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockWebhookExecutor struct {
	mock.Mock
}

func (m *mockWebhookExecutor) WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	args := m.Called(webhookID, token, wait, data)
	return nil, args.Error(0)
}

func TestParseDiscordWebhookURL(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantID    string
		wantToken string
		wantErr   bool
	}{
		{name: "standard", raw: "https://discord.com/api/webhooks/123/abc", wantID: "123", wantToken: "abc"},
		{name: "versioned", raw: "https://discord.com/api/v10/webhooks/456/def", wantID: "456", wantToken: "def"},
		{name: "trailing slash", raw: " https://discord.com/api/webhooks/789/ghi/ ", wantID: "789", wantToken: "ghi"},
		{name: "missing token", raw: "https://discord.com/api/webhooks/123", wantErr: true},
		{name: "not a webhook", raw: "https://discord.com/channels/1/2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, token, err := ParseDiscordWebhookURL(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}

func TestCreateAlertEmbed(t *testing.T) {
	t.Run("failure detected", func(t *testing.T) {
		embed := CreateAlertEmbed(events.FailureDetectedEvent{
			Gateway:      "getnet",
			PendingCount: 15,
			Threshold:    10,
			DetectedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		})
		require.NotNil(t, embed)
		assert.Equal(t, ColorWarning, embed.Color)
		assert.Contains(t, embed.Title, "getnet")
		assert.Equal(t, "2026-01-02T03:04:05Z", embed.Timestamp)
		require.Len(t, embed.Fields, 2)
		assert.Equal(t, "15", embed.Fields[0].Value)
		assert.Equal(t, "10", embed.Fields[1].Value)
	})

	t.Run("deactivation succeeded", func(t *testing.T) {
		embed := CreateAlertEmbed(events.DeactivationAttemptedEvent{
			Gateway:    "getnet",
			Outcome:    models.DeactivationSucceeded,
			StatusCode: 200,
		})
		require.NotNil(t, embed)
		assert.Equal(t, ColorSuccess, embed.Color)
		assert.Len(t, embed.Fields, 2)
	})

	t.Run("deactivation transport error", func(t *testing.T) {
		embed := CreateAlertEmbed(events.DeactivationAttemptedEvent{
			Gateway: "getnet",
			Outcome: models.DeactivationTransportError,
			Error:   "connection refused",
		})
		require.NotNil(t, embed)
		assert.Equal(t, ColorDanger, embed.Color)
		assert.Equal(t, "connection refused", embed.Description)
		assert.Len(t, embed.Fields, 1)
	})

	t.Run("run completed is not alerted", func(t *testing.T) {
		assert.Nil(t, CreateAlertEmbed(events.RunCompletedEvent{Gateway: "getnet"}))
	})
}

func TestDiscordAlertPublisher_Handle(t *testing.T) {
	executor := new(mockWebhookExecutor)
	publisher := newDiscordAlertPublisher(executor, "123", "abc")

	executor.On("WebhookExecute", "123", "abc", false, mock.MatchedBy(func(p *discordgo.WebhookParams) bool {
		return len(p.Embeds) == 1 && p.Embeds[0].Color == ColorDanger
	})).Return(nil)

	err := publisher.Handle(context.Background(), events.RunFailedEvent{Gateway: "getnet", Error: "login failed"})
	require.NoError(t, err)
	executor.AssertExpectations(t)
}

func TestDiscordAlertPublisher_SkipsUnalertedEvents(t *testing.T) {
	executor := new(mockWebhookExecutor)
	publisher := newDiscordAlertPublisher(executor, "123", "abc")

	require.NoError(t, publisher.Handle(context.Background(), events.RunCompletedEvent{Gateway: "getnet"}))
	executor.AssertNotCalled(t, "WebhookExecute", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDiscordAlertPublisher_ExecuteError(t *testing.T) {
	executor := new(mockWebhookExecutor)
	publisher := newDiscordAlertPublisher(executor, "123", "abc")
	executor.On("WebhookExecute", "123", "abc", false, mock.Anything).Return(errors.New("HTTP 429"))

	err := publisher.Handle(context.Background(), events.FailureDetectedEvent{Gateway: "getnet"})
	assert.ErrorContains(t, err, "HTTP 429")
}

func TestDiscordAlertPublisher_RegisteredOnBus(t *testing.T) {
	executor := new(mockWebhookExecutor)
	publisher := newDiscordAlertPublisher(executor, "123", "abc")
	executor.On("WebhookExecute", "123", "abc", false, mock.Anything).Return(nil)

	bus := events.NewBus()
	publisher.Register(bus)

	bus.Publish(context.Background(), events.FailureDetectedEvent{Gateway: "getnet"})
	bus.Publish(context.Background(), events.RunCompletedEvent{Gateway: "getnet"})

	executor.AssertNumberOfCalls(t, "WebhookExecute", 1)
}
