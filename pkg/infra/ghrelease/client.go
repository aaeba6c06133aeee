package ghrelease

import (
	"context"
	"net/http"
	"time"

	"github.com/google/go-github/v55/github"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/oauth2"

	"github.com/secmon-lab/relnote/pkg/domain/interfaces"
	"github.com/secmon-lab/relnote/pkg/domain/model"
	"github.com/secmon-lab/relnote/pkg/domain/types"
)

const listPageSize = 50

// Client talks to the GitHub REST API and maps wire shapes into domain
// entities. An empty token yields an unauthenticated client, which is enough
// for public repositories but not for hook management.
type Client struct {
	gh        *github.Client
	pageDelay time.Duration
}

var _ interfaces.GitHub = (*Client)(nil)

type Option func(*Client) error

// WithBaseURL points the client at a GitHub Enterprise endpoint or a test
// server.
func WithBaseURL(baseURL string) Option {
	return func(x *Client) error {
		gh, err := x.gh.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return goerr.Wrap(err, "setting enterprise base URL", goerr.V("url", baseURL))
		}
		x.gh = gh
		return nil
	}
}

// WithPageDelay sets the pause between pagination requests.
func WithPageDelay(d time.Duration) Option {
	return func(x *Client) error {
		x.pageDelay = d
		return nil
	}
}

func New(token types.GitHubToken, options ...Option) (*Client, error) {
	var hc *http.Client
	if token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: string(token)})
		hc = oauth2.NewClient(context.Background(), src)
	}

	client := &Client{
		gh:        github.NewClient(hc),
		pageDelay: time.Second,
	}

	for _, opt := range options {
		if err := opt(client); err != nil {
			return nil, err
		}
	}

	return client, nil
}

func (x *Client) GetOwnerType(ctx context.Context, owner string) (types.OwnerType, error) {
	user, _, err := x.gh.Users.Get(ctx, owner)
	if err != nil {
		return types.OwnerIndividual, goerr.Wrap(err, "looking up owner", goerr.V("owner", owner))
	}
	if user.GetType() == "Organization" {
		return types.OwnerOrganization, nil
	}
	return types.OwnerIndividual, nil
}

func (x *Client) ListOwnerRepos(ctx context.Context, owner string, ownerType types.OwnerType) ([]*model.Repository, error) {
	var all []*model.Repository
	page := 1

	for {
		var repos []*github.Repository
		var resp *github.Response
		var err error

		switch ownerType {
		case types.OwnerOrganization:
			repos, resp, err = x.gh.Repositories.ListByOrg(ctx, owner, &github.RepositoryListByOrgOptions{
				Sort:        "updated",
				ListOptions: github.ListOptions{Page: page, PerPage: listPageSize},
			})
		default:
			repos, resp, err = x.gh.Repositories.List(ctx, owner, &github.RepositoryListOptions{
				Sort:        "updated",
				ListOptions: github.ListOptions{Page: page, PerPage: listPageSize},
			})
		}
		if err != nil {
			return nil, goerr.Wrap(err, "listing repositories",
				goerr.V("owner", owner),
				goerr.V("page", page),
			)
		}

		if len(repos) == 0 {
			break
		}
		for _, repo := range repos {
			all = append(all, toRepository(repo))
		}

		if resp.NextPage == 0 {
			break
		}
		page = resp.NextPage
		sleep(ctx, x.pageDelay)
	}

	return all, nil
}

func (x *Client) ListReleases(ctx context.Context, owner, name string, limit int) ([]*model.Release, error) {
	releases, _, err := x.gh.Repositories.ListReleases(ctx, owner, name, &github.ListOptions{PerPage: limit})
	if err != nil {
		return nil, goerr.Wrap(err, "listing releases", goerr.V("repo", owner+"/"+name))
	}

	out := make([]*model.Release, 0, len(releases))
	for _, rel := range releases {
		out = append(out, toRelease(rel))
	}
	return out, nil
}

func (x *Client) GetRelease(ctx context.Context, owner, name string, id types.ReleaseID) (*model.Release, error) {
	rel, _, err := x.gh.Repositories.GetRelease(ctx, owner, name, int64(id))
	if err != nil {
		return nil, goerr.Wrap(err, "fetching release",
			goerr.V("repo", owner+"/"+name),
			goerr.V("release_id", id),
		)
	}
	return toRelease(rel), nil
}

func (x *Client) CompareTags(ctx context.Context, owner, name, base, head string) ([]model.Commit, error) {
	cmp, _, err := x.gh.Repositories.CompareCommits(ctx, owner, name, base, head, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "comparing tags",
			goerr.V("repo", owner+"/"+name),
			goerr.V("base", base),
			goerr.V("head", head),
		)
	}

	commits := make([]model.Commit, 0, len(cmp.Commits))
	for _, c := range cmp.Commits {
		commits = append(commits, model.Commit{
			SHA:     c.GetSHA(),
			Message: c.GetCommit().GetMessage(),
		})
	}
	return commits, nil
}

func (x *Client) ListHooks(ctx context.Context, owner, name string) ([]*model.Hook, error) {
	hooks, resp, err := x.gh.Repositories.ListHooks(ctx, owner, name, &github.ListOptions{PerPage: 100})
	if err != nil {
		return nil, wrapHookErr(err, resp, "listing hooks", owner, name)
	}

	out := make([]*model.Hook, 0, len(hooks))
	for _, h := range hooks {
		out = append(out, toHook(h))
	}
	return out, nil
}

func (x *Client) CreateHook(ctx context.Context, owner, name string, cfg model.HookConfig) (*model.Hook, error) {
	hook, resp, err := x.gh.Repositories.CreateHook(ctx, owner, name, desiredHook(cfg))
	if err != nil {
		return nil, wrapHookErr(err, resp, "creating hook", owner, name)
	}
	return toHook(hook), nil
}

func (x *Client) UpdateHook(ctx context.Context, owner, name string, hookID int64, cfg model.HookConfig) (*model.Hook, error) {
	hook, resp, err := x.gh.Repositories.EditHook(ctx, owner, name, hookID, desiredHook(cfg))
	if err != nil {
		return nil, wrapHookErr(err, resp, "updating hook", owner, name)
	}
	return toHook(hook), nil
}

func desiredHook(cfg model.HookConfig) *github.Hook {
	return &github.Hook{
		Active: github.Bool(true),
		Events: []string{"release"},
		Config: map[string]interface{}{
			"url":          cfg.URL,
			"content_type": "json",
			"secret":       string(cfg.Secret),
		},
	}
}

func wrapHookErr(err error, resp *github.Response, msg, owner, name string) error {
	if resp != nil && (resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusNotFound) {
		return goerr.Wrap(types.ErrRepoNotAccessible, msg,
			goerr.V("repo", owner+"/"+name),
			goerr.V("status", resp.StatusCode),
		)
	}
	return goerr.Wrap(err, msg, goerr.V("repo", owner+"/"+name))
}

func toRepository(repo *github.Repository) *model.Repository {
	return &model.Repository{
		ID:            types.RepoID(repo.GetID()),
		FullName:      types.RepoFullName(repo.GetFullName()),
		Description:   repo.GetDescription(),
		Private:       repo.GetPrivate(),
		Fork:          repo.GetFork(),
		Archived:      repo.GetArchived(),
		Disabled:      repo.GetDisabled(),
		DefaultBranch: repo.GetDefaultBranch(),
		HTMLURL:       repo.GetHTMLURL(),
		CreatedAt:     repo.GetCreatedAt().Time,
		UpdatedAt:     repo.GetUpdatedAt().Time,
		PushedAt:      repo.GetPushedAt().Time,
	}
}

func toRelease(rel *github.RepositoryRelease) *model.Release {
	return &model.Release{
		ID:          types.ReleaseID(rel.GetID()),
		TagName:     rel.GetTagName(),
		Name:        rel.GetName(),
		Body:        rel.GetBody(),
		Author:      rel.GetAuthor().GetLogin(),
		HTMLURL:     rel.GetHTMLURL(),
		Draft:       rel.GetDraft(),
		Prerelease:  rel.GetPrerelease(),
		PublishedAt: rel.GetPublishedAt().Time,
	}
}

func toHook(h *github.Hook) *model.Hook {
	url, _ := h.Config["url"].(string)
	return &model.Hook{
		ID:     h.GetID(),
		URL:    url,
		Events: h.Events,
		Active: h.GetActive(),
	}
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
