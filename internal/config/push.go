package config

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"go.uber.org/fx"
)

type PushConfig struct {
	APIKey string
	APIURL string
}

func NewPushConfig() *PushConfig {
	apiKey := os.Getenv("PUSH_API_KEY")
	apiURL := os.Getenv("PUSH_API_URL")
	if apiKey == "" || apiURL == "" {
		log.Fatal("Missing Environment variables")
	}
	return &PushConfig{APIKey: apiKey, APIURL: apiURL}
}

type PushNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type AndroidNotification struct {
	ChannelID string `json:"channel_id"`
	Sound     string `json:"sound"`
}

type AndroidConfig struct {
	Priority     string              `json:"priority"`
	Notification AndroidNotification `json:"notification"`
}

type APSPayload struct {
	Sound string `json:"sound"`
	Badge int    `json:"badge"`
}

type APNSPayload struct {
	Aps APSPayload `json:"aps"`
}

type APNSConfig struct {
	Payload APNSPayload `json:"payload"`
}

// PushMessage is one device message inside a bulk delivery. It only lives for
// the duration of a dispatch and is never persisted.
type PushMessage struct {
	Token        string            `json:"token"`
	Notification PushNotification  `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
	Android      AndroidConfig     `json:"android"`
	APNS         APNSConfig        `json:"apns"`
}

// PushReport is the per-dispatch outcome returned by the push gateway.
type PushReport struct {
	SuccessCount int `json:"success_count"`
	FailureCount int `json:"failure_count"`
}

type batchRequest struct {
	Messages []*PushMessage `json:"messages"`
}

type PushService struct {
	Config *PushConfig
}

func NewPushService(lc fx.Lifecycle, config *PushConfig) *PushService {
	service := &PushService{Config: config}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Println("Push service initialized")
			return nil
		},
	})
	return service
}

// SendEach submits every message of a dispatch in one bulk call. The gateway
// delivers each message independently and reports aggregate counts; only a
// failure of the call itself is returned as an error.
func (p *PushService) SendEach(ctx context.Context, messages []*PushMessage) (*PushReport, error) {
	jsonData, err := json.Marshal(batchRequest{Messages: messages})
	if err != nil {
		return nil, fmt.Errorf("Failed to marshal push batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.Config.APIURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("Failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+p.Config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Failed to send push batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errorResponse map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errorResponse)
		return nil, fmt.Errorf("Failed to send push batch, status code: %d, error: %v", resp.StatusCode, errorResponse)
	}

	var report PushReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("Failed to decode push report: %w", err)
	}
	return &report, nil
}
