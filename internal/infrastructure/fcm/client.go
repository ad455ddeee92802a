package fcm

import (
	"context"
	"fmt"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// Client wraps Firebase Cloud Messaging for alert push delivery.
// A client without credentials is disabled; sends become no-op errors so
// alert evaluation never depends on push being configured.
type Client struct {
	client *messaging.Client
}

// NewClient initializes FCM from FIREBASE_CREDENTIALS_PATH or, failing
// that, an inline FIREBASE_CREDENTIALS_JSON blob. Missing credentials
// disable push instead of failing startup.
func NewClient(ctx context.Context) (*Client, error) {
	credPath := os.Getenv("FIREBASE_CREDENTIALS_PATH")
	if credPath == "" {
		credJSON := os.Getenv("FIREBASE_CREDENTIALS_JSON")
		if credJSON == "" {
			log.Println("[fcm] no Firebase credentials found, push disabled")
			return &Client{client: nil}, nil
		}

		tmpFile, err := os.CreateTemp("", "firebase-credentials-*.json")
		if err != nil {
			return nil, fmt.Errorf("fcm: create temp file: %w", err)
		}
		defer tmpFile.Close()

		if _, err := tmpFile.Write([]byte(credJSON)); err != nil {
			return nil, fmt.Errorf("fcm: write credentials: %w", err)
		}
		credPath = tmpFile.Name()
	}

	opt := option.WithCredentialsFile(credPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("fcm: initializing firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("fcm: getting messaging client: %w", err)
	}

	log.Println("[fcm] Firebase Cloud Messaging initialized")
	return &Client{client: client}, nil
}

// IsEnabled returns true if the client has credentials behind it.
func (c *Client) IsEnabled() bool {
	return c != nil && c.client != nil
}

// SendMulticast pushes one notification to every registered device token.
func (c *Client) SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	if !c.IsEnabled() {
		return fmt.Errorf("fcm: client not initialized")
	}
	if len(tokens) == 0 {
		return nil
	}

	message := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "dashboard_alerts",
				Priority:  messaging.PriorityHigh,
			},
		},
	}

	response, err := c.client.SendEachForMulticast(ctx, message)
	if err != nil {
		return fmt.Errorf("fcm: sending multicast: %w", err)
	}

	log.Printf("[fcm] sent %d messages (%d failures)", response.SuccessCount, response.FailureCount)
	return nil
}
