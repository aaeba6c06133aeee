package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/relnote/pkg/domain/interfaces"
	"github.com/secmon-lab/relnote/pkg/domain/types"
	"github.com/secmon-lab/relnote/pkg/utils/logging"
	"github.com/secmon-lab/relnote/pkg/utils/safe"
)

const (
	defaultBaseURL    = "https://api.telegram.org"
	defaultMaxRetries = 3
	defaultBaseDelay  = time.Second
	defaultChunkDelay = 500 * time.Millisecond
	defaultRetryAfter = 5 * time.Second
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client sends messages through the Telegram Bot API with HTML formatting.
// Oversized messages are split at newline boundaries; transient failures are
// retried with exponential backoff, and explicit rate limits honor the
// provider-specified retry-after duration.
type Client struct {
	token      types.TelegramBotToken
	baseURL    string
	httpClient HTTPClient
	maxRetries int
	baseDelay  time.Duration
	chunkDelay time.Duration
}

var _ interfaces.Telegram = (*Client)(nil)

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(x *Client) {
		x.baseURL = baseURL
	}
}

func WithHTTPClient(hc HTTPClient) Option {
	return func(x *Client) {
		x.httpClient = hc
	}
}

// WithDelays overrides the retry base delay and the inter-chunk delay,
// mainly for tests.
func WithDelays(base, chunk time.Duration) Option {
	return func(x *Client) {
		x.baseDelay = base
		x.chunkDelay = chunk
	}
}

func New(token types.TelegramBotToken, options ...Option) (*Client, error) {
	if token == "" {
		return nil, goerr.Wrap(types.ErrInvalidOption, "telegram bot token is empty")
	}

	client := &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
		chunkDelay: defaultChunkDelay,
	}
	for _, opt := range options {
		opt(client)
	}

	return client, nil
}

// SendMessage delivers text to the chat, splitting it when it exceeds the
// Bot API ceiling. Chunks are sent strictly in order; a failed chunk aborts
// the remainder and the last error is returned.
func (x *Client) SendMessage(ctx context.Context, chatID types.ChatID, text string) error {
	if chatID == "" {
		return goerr.Wrap(types.ErrInvalidOption, "destination chat is empty")
	}

	parts := SplitMessage(text, MaxMessageLen)
	for i, part := range parts {
		if i > 0 {
			sleep(ctx, x.chunkDelay)
		}
		if err := x.sendOnce(ctx, chatID, part); err != nil {
			return goerr.Wrap(err, "sending message chunk",
				goerr.V("chunk", i+1),
				goerr.V("chunks", len(parts)),
			)
		}
	}
	return nil
}

type sendRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type sendResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Parameters  *struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

func (x *Client) sendOnce(ctx context.Context, chatID types.ChatID, text string) error {
	var lastErr error

	for attempt := 1; attempt <= x.maxRetries; attempt++ {
		retryAfter, err := x.post(ctx, chatID, text)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == x.maxRetries {
			break
		}

		wait := x.baseDelay * (1 << (attempt - 1))
		if retryAfter > 0 {
			// Rate limit: wait exactly as long as the provider asks, no
			// exponential growth.
			wait = retryAfter
		}
		logging.From(ctx).Warn("telegram send failed, retrying",
			"attempt", attempt,
			"wait", wait,
			"error", err,
		)
		sleep(ctx, wait)
	}

	return lastErr
}

// post performs a single sendMessage call. On a rate-limit response it
// returns the duration to wait before the next attempt.
func (x *Client) post(ctx context.Context, chatID types.ChatID, text string) (time.Duration, error) {
	body, err := json.Marshal(&sendRequest{
		ChatID:                string(chatID),
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return 0, goerr.Wrap(err, "marshaling send request")
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", x.baseURL, string(x.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, goerr.Wrap(err, "building send request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return 0, goerr.Wrap(err, "calling telegram API")
	}
	defer safe.Close(resp.Body)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return 0, goerr.Wrap(err, "reading telegram response")
	}

	var parsed sendResponse
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.OK {
		return 0, nil
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := defaultRetryAfter
		if parsed.Parameters != nil && parsed.Parameters.RetryAfter > 0 {
			retryAfter = time.Duration(parsed.Parameters.RetryAfter) * time.Second
		}
		return retryAfter, goerr.Wrap(types.ErrRateLimited, parsed.Description,
			goerr.V("retry_after", retryAfter),
		)
	}

	return 0, goerr.New("telegram API error",
		goerr.V("status", resp.StatusCode),
		goerr.V("description", parsed.Description),
	)
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
