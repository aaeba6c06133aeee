package telegram_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/relnote/pkg/infra/telegram"
)

type sendPayload struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

func TestSendMessage(t *testing.T) {
	t.Run("sends one chunk with HTML parse mode", func(t *testing.T) {
		var got sendPayload
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gt.B(t, strings.HasSuffix(r.URL.Path, "/sendMessage")).True()
			gt.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		defer srv.Close()

		client := gt.R1(telegram.New("test-token", telegram.WithBaseURL(srv.URL))).NoError(t)
		gt.NoError(t, client.SendMessage(context.Background(), "-100123", "hello"))

		gt.V(t, got.ChatID).Equal("-100123")
		gt.V(t, got.Text).Equal("hello")
		gt.V(t, got.ParseMode).Equal("HTML")
	})

	t.Run("splits oversized message into ordered chunks", func(t *testing.T) {
		var texts []string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var p sendPayload
			gt.NoError(t, json.NewDecoder(r.Body).Decode(&p))
			texts = append(texts, p.Text)
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		defer srv.Close()

		client := gt.R1(telegram.New("test-token",
			telegram.WithBaseURL(srv.URL),
			telegram.WithDelays(0, 0),
		)).NoError(t)

		text := strings.Repeat(strings.Repeat("x", 99)+"\n", 91) // ~9100 chars
		gt.NoError(t, client.SendMessage(context.Background(), "-100123", text))

		gt.N(t, len(texts)).Greater(1)
		gt.V(t, strings.Join(texts, "")).Equal(text)
	})

	t.Run("retries transient failure with backoff", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls < 3 {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"ok":false,"description":"boom"}`))
				return
			}
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		defer srv.Close()

		client := gt.R1(telegram.New("test-token",
			telegram.WithBaseURL(srv.URL),
			telegram.WithDelays(0, 0),
		)).NoError(t)

		gt.NoError(t, client.SendMessage(context.Background(), "-100123", "hello"))
		gt.N(t, calls).Equal(3)
	})

	t.Run("honors rate limit retry_after", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"ok":false,"description":"Too Many Requests","parameters":{"retry_after":1}}`))
				return
			}
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		defer srv.Close()

		client := gt.R1(telegram.New("test-token",
			telegram.WithBaseURL(srv.URL),
			telegram.WithDelays(0, 0),
		)).NoError(t)

		gt.NoError(t, client.SendMessage(context.Background(), "-100123", "hello"))
		gt.N(t, calls).Equal(2)
	})

	t.Run("propagates last error after retry exhaustion", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
		}))
		defer srv.Close()

		client := gt.R1(telegram.New("test-token",
			telegram.WithBaseURL(srv.URL),
			telegram.WithDelays(0, 0),
		)).NoError(t)

		err := client.SendMessage(context.Background(), "-100123", "hello")
		gt.Error(t, err)
		gt.N(t, calls).Equal(3)
	})

	t.Run("rejects empty chat", func(t *testing.T) {
		client := gt.R1(telegram.New("test-token")).NoError(t)
		gt.Error(t, client.SendMessage(context.Background(), "", "hello"))
	})

	t.Run("rejects empty token", func(t *testing.T) {
		gt.R1(telegram.New("")).Error(t)
	})
}
