package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/dghubble/oauth1"
	"github.com/spiffcs/spotlight/internal/banner"
	"github.com/spiffcs/spotlight/internal/log"
)

const (
	defaultUploadURL = "https://upload.twitter.com/1.1/media/upload.json"
	defaultTweetURL  = "https://api.twitter.com/2/tweets"
)

// TwitterCredentials are the OAuth 1.0a user-context keys of the posting
// account.
type TwitterCredentials struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
}

// Complete reports whether every key is set.
func (c TwitterCredentials) Complete() bool {
	return c.ConsumerKey != "" && c.ConsumerSecret != "" && c.AccessToken != "" && c.AccessSecret != ""
}

// Twitter uploads the banner and tweets it with a caption.
type Twitter struct {
	client    *http.Client
	uploadURL string
	tweetURL  string
}

// TwitterOption configures a Twitter publisher.
type TwitterOption func(*Twitter)

// WithTwitterEndpoints overrides the media upload and tweet endpoints.
func WithTwitterEndpoints(uploadURL, tweetURL string) TwitterOption {
	return func(t *Twitter) {
		t.uploadURL = uploadURL
		t.tweetURL = tweetURL
	}
}

// NewTwitter creates a Twitter publisher. Requests are signed with OAuth1
// on top of base, which may be nil.
func NewTwitter(creds TwitterCredentials, base *http.Client, opts ...TwitterOption) (*Twitter, error) {
	if !creds.Complete() {
		return nil, errors.New("twitter credentials incomplete")
	}
	if base == nil {
		base = http.DefaultClient
	}

	config := oauth1.NewConfig(creds.ConsumerKey, creds.ConsumerSecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)
	ctx := context.WithValue(context.Background(), oauth1.HTTPClient, base)

	t := &Twitter{
		client:    config.Client(ctx, token),
		uploadURL: defaultUploadURL,
		tweetURL:  defaultTweetURL,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Name implements Publisher.
func (t *Twitter) Name() string { return "twitter" }

// Publish implements Publisher.
func (t *Twitter) Publish(ctx context.Context, post Post) error {
	var mediaIDs []string
	if len(post.Image) > 0 {
		id, err := t.upload(ctx, post.Image)
		if err != nil {
			return fmt.Errorf("failed to upload media: %w", err)
		}
		mediaIDs = append(mediaIDs, id)
	}

	text := banner.TwitterCaption(post.Contributor, post.WindowDays)
	id, err := t.tweet(ctx, text, mediaIDs)
	if err != nil {
		return fmt.Errorf("failed to post tweet: %w", err)
	}
	log.Debug("tweet posted", "id", id)
	return nil
}

func (t *Twitter) upload(ctx context.Context, image []byte) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("media", ImageName)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(image); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.uploadURL, &buf)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()
	if err := checkResponse(resp); err != nil {
		return "", err
	}

	var out struct {
		MediaIDString string `json:"media_id_string"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if out.MediaIDString == "" {
		return "", errors.New("upload response has no media id")
	}
	return out.MediaIDString, nil
}

type tweetRequest struct {
	Text  string      `json:"text"`
	Media *tweetMedia `json:"media,omitempty"`
}

type tweetMedia struct {
	MediaIDs []string `json:"media_ids"`
}

func (t *Twitter) tweet(ctx context.Context, text string, mediaIDs []string) (string, error) {
	payload := tweetRequest{Text: text}
	if len(mediaIDs) > 0 {
		payload.Media = &tweetMedia{MediaIDs: mediaIDs}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode tweet: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.tweetURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()
	if err := checkResponse(resp); err != nil {
		return "", err
	}

	var out struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode tweet response: %w", err)
	}
	return out.Data.ID, nil
}
