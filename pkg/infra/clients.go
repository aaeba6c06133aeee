package infra

import (
	"net/http"

	"github.com/secmon-lab/relnote/pkg/domain/interfaces"
)

// Clients bundles the external collaborators of the pipeline: the
// source-control provider, the messaging provider and the persistent store.
type Clients struct {
	github     interfaces.GitHub
	telegram   interfaces.Telegram
	store      interfaces.Store
	httpClient HTTPClient
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Option func(*Clients)

func New(options ...Option) *Clients {
	client := &Clients{
		httpClient: http.DefaultClient,
	}

	for _, opt := range options {
		opt(client)
	}

	return client
}

func (x *Clients) GitHub() interfaces.GitHub {
	return x.github
}

func (x *Clients) Telegram() interfaces.Telegram {
	return x.telegram
}

func (x *Clients) Store() interfaces.Store {
	return x.store
}

func (x *Clients) HTTPClient() HTTPClient {
	return x.httpClient
}

func WithGitHub(client interfaces.GitHub) Option {
	return func(x *Clients) {
		x.github = client
	}
}

func WithTelegram(client interfaces.Telegram) Option {
	return func(x *Clients) {
		x.telegram = client
	}
}

func WithStore(store interfaces.Store) Option {
	return func(x *Clients) {
		x.store = store
	}
}

func WithHTTPClient(client HTTPClient) Option {
	return func(x *Clients) {
		x.httpClient = client
	}
}
