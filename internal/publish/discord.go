package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/spiffcs/spotlight/internal/banner"
	"github.com/spiffcs/spotlight/internal/log"
)

// Discord posts the banner through a Discord channel webhook.
type Discord struct {
	url    string
	client *http.Client
}

// NewDiscord creates a Discord publisher for the given webhook URL.
func NewDiscord(webhookURL string, client *http.Client) (*Discord, error) {
	if webhookURL == "" {
		return nil, errors.New("discord webhook URL not configured")
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Discord{url: webhookURL, client: client}, nil
}

// Name implements Publisher.
func (d *Discord) Name() string { return "discord" }

// Publish implements Publisher.
func (d *Discord) Publish(ctx context.Context, post Post) error {
	caption := banner.DiscordCaption(post.Contributor, post.WindowDays)

	body, contentType, err := discordBody(caption, post.Image)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return fmt.Errorf("webhook rejected message: %w", err)
	}
	log.Debug("discord webhook delivered", "status", resp.StatusCode)
	return nil
}

// discordBody builds the multipart form a webhook execution expects: the
// message as payload_json plus the image as the first attachment.
func discordBody(caption string, image []byte) (*bytes.Buffer, string, error) {
	payload, err := json.Marshal(map[string]any{
		"content": caption,
		"allowed_mentions": map[string]any{
			"parse": []string{},
		},
	})
	if err != nil {
		return nil, "", fmt.Errorf("encode payload: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("payload_json", string(payload)); err != nil {
		return nil, "", err
	}
	if len(image) > 0 {
		part, err := w.CreateFormFile("files[0]", ImageName)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(image); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
