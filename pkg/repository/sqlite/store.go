package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/relnote/pkg/domain/model"
	"github.com/secmon-lab/relnote/pkg/domain/types"
)

const repoColumns = `full_name, repo_id, description, private, fork, archived, disabled,
	default_branch, html_url, profile, chat_id, hook_id, hook_status, hook_synced_at,
	created_at, updated_at, pushed_at, discovered_at`

// UpsertRepository inserts a repository or refreshes its mutable fields.
// Hook fields and created_at are preserved on update; they belong to the
// hook synchronizer.
func (x *Store) UpsertRepository(ctx context.Context, repo *model.Repository) error {
	status := repo.HookStatus
	if status == "" {
		status = types.HookStatusPending
	}

	_, err := x.db.ExecContext(ctx, `
		INSERT INTO repositories (
			full_name, repo_id, description, private, fork, archived, disabled,
			default_branch, html_url, profile, chat_id, hook_status,
			created_at, updated_at, pushed_at, discovered_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(full_name) DO UPDATE SET
			repo_id = excluded.repo_id,
			description = excluded.description,
			private = excluded.private,
			fork = excluded.fork,
			archived = excluded.archived,
			disabled = excluded.disabled,
			default_branch = excluded.default_branch,
			html_url = excluded.html_url,
			profile = excluded.profile,
			chat_id = excluded.chat_id,
			updated_at = excluded.updated_at,
			pushed_at = excluded.pushed_at,
			discovered_at = excluded.discovered_at`,
		string(repo.FullName), int64(repo.ID), repo.Description,
		boolToInt(repo.Private), boolToInt(repo.Fork), boolToInt(repo.Archived), boolToInt(repo.Disabled),
		repo.DefaultBranch, repo.HTMLURL, repo.Profile, string(repo.ChatID), string(status),
		fmtTime(repo.CreatedAt), fmtTime(repo.UpdatedAt), fmtTime(repo.PushedAt), fmtTime(repo.DiscoveredAt),
	)
	if err != nil {
		return goerr.Wrap(err, "upserting repository", goerr.V("repo", repo.FullName))
	}
	return nil
}

func (x *Store) GetRepository(ctx context.Context, fullName types.RepoFullName) (*model.Repository, error) {
	row := x.db.QueryRowContext(ctx,
		`SELECT `+repoColumns+` FROM repositories WHERE full_name = ?`, string(fullName))

	repo, err := scanRepository(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return repo, err
}

func (x *Store) ListRepositories(ctx context.Context) ([]*model.Repository, error) {
	return x.queryRepositories(ctx,
		`SELECT `+repoColumns+` FROM repositories ORDER BY full_name`)
}

func (x *Store) ListRepositoriesByHookStatus(ctx context.Context, status types.HookStatus) ([]*model.Repository, error) {
	return x.queryRepositories(ctx,
		`SELECT `+repoColumns+` FROM repositories WHERE hook_status = ? ORDER BY full_name`,
		string(status))
}

func (x *Store) UpdateHookState(ctx context.Context, fullName types.RepoFullName, hookID *int64, status types.HookStatus, syncedAt time.Time) error {
	var id sql.NullInt64
	if hookID != nil {
		id = sql.NullInt64{Int64: *hookID, Valid: true}
	}

	res, err := x.db.ExecContext(ctx,
		`UPDATE repositories SET hook_id = ?, hook_status = ?, hook_synced_at = ? WHERE full_name = ?`,
		id, string(status), fmtTime(syncedAt), string(fullName))
	if err != nil {
		return goerr.Wrap(err, "updating hook state", goerr.V("repo", fullName))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return goerr.New("unknown repository", goerr.V("repo", fullName))
	}
	return nil
}

func (x *Store) CountRepositoriesByHookStatus(ctx context.Context) (map[types.HookStatus]int64, error) {
	rows, err := x.db.QueryContext(ctx,
		`SELECT hook_status, COUNT(*) FROM repositories GROUP BY hook_status`)
	if err != nil {
		return nil, goerr.Wrap(err, "counting repositories")
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[types.HookStatus]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, goerr.Wrap(err, "scanning repository counts")
		}
		counts[types.HookStatus(status)] = n
	}
	return counts, rows.Err()
}

func (x *Store) IsProcessed(ctx context.Context, releaseID types.ReleaseID, fullName types.RepoFullName) (bool, error) {
	var one int
	err := x.db.QueryRowContext(ctx,
		`SELECT 1 FROM processed_releases WHERE release_id = ? AND repo_full_name = ?`,
		int64(releaseID), string(fullName)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, goerr.Wrap(err, "querying ledger",
			goerr.V("release_id", releaseID), goerr.V("repo", fullName))
	}
	return true, nil
}

// MarkProcessed is the at-most-once gate: the unique constraint on
// (release_id, repo_full_name) makes the second concurrent insert a no-op.
func (x *Store) MarkProcessed(ctx context.Context, rec *model.ProcessedRelease) (bool, error) {
	res, err := x.db.ExecContext(ctx, `
		INSERT INTO processed_releases (release_id, repo_full_name, tag_name, source, processed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(release_id, repo_full_name) DO NOTHING`,
		int64(rec.ReleaseID), string(rec.RepoFullName), rec.TagName, string(rec.Source), fmtTime(rec.ProcessedAt))
	if err != nil {
		return false, goerr.Wrap(err, "inserting ledger entry",
			goerr.V("release_id", rec.ReleaseID), goerr.V("repo", rec.RepoFullName))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, goerr.Wrap(err, "reading insert result")
	}
	return n > 0, nil
}

func (x *Store) ListRecentProcessed(ctx context.Context, limit int) ([]*model.ProcessedRelease, error) {
	rows, err := x.db.QueryContext(ctx, `
		SELECT release_id, repo_full_name, tag_name, source, processed_at
		FROM processed_releases ORDER BY processed_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "listing recent deliveries")
	}
	defer func() { _ = rows.Close() }()

	var out []*model.ProcessedRelease
	for rows.Next() {
		var rec model.ProcessedRelease
		var releaseID int64
		var fullName, source, processedAt string
		if err := rows.Scan(&releaseID, &fullName, &rec.TagName, &source, &processedAt); err != nil {
			return nil, goerr.Wrap(err, "scanning ledger entry")
		}
		rec.ReleaseID = types.ReleaseID(releaseID)
		rec.RepoFullName = types.RepoFullName(fullName)
		rec.Source = types.DeliverySource(source)
		rec.ProcessedAt = parseTime(processedAt)
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (x *Store) CountProcessed(ctx context.Context) (int64, error) {
	var n int64
	if err := x.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM processed_releases`).Scan(&n); err != nil {
		return 0, goerr.Wrap(err, "counting ledger entries")
	}
	return n, nil
}

// PruneProcessed keeps the most recent entries and deletes the rest,
// returning the number of pruned rows.
func (x *Store) PruneProcessed(ctx context.Context, keep int) (int64, error) {
	res, err := x.db.ExecContext(ctx, `
		DELETE FROM processed_releases WHERE id NOT IN (
			SELECT id FROM processed_releases ORDER BY processed_at DESC, id DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, goerr.Wrap(err, "pruning ledger")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, goerr.Wrap(err, "reading prune result")
	}
	return n, nil
}

func (x *Store) queryRepositories(ctx context.Context, query string, args ...any) ([]*model.Repository, error) {
	rows, err := x.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "querying repositories")
	}
	defer func() { _ = rows.Close() }()

	var out []*model.Repository
	for rows.Next() {
		repo, err := scanRepository(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, repo)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRepository(row rowScanner) (*model.Repository, error) {
	var repo model.Repository
	var fullName, chatID, status string
	var repoID int64
	var private, fork, archived, disabled int
	var hookID sql.NullInt64
	var hookSyncedAt sql.NullString
	var createdAt, updatedAt, pushedAt, discoveredAt string

	err := row.Scan(&fullName, &repoID, &repo.Description,
		&private, &fork, &archived, &disabled,
		&repo.DefaultBranch, &repo.HTMLURL, &repo.Profile, &chatID,
		&hookID, &status, &hookSyncedAt,
		&createdAt, &updatedAt, &pushedAt, &discoveredAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, goerr.Wrap(err, "scanning repository row")
	}

	repo.FullName = types.RepoFullName(fullName)
	repo.ID = types.RepoID(repoID)
	repo.Private = private != 0
	repo.Fork = fork != 0
	repo.Archived = archived != 0
	repo.Disabled = disabled != 0
	repo.ChatID = types.ChatID(chatID)
	repo.HookStatus = types.HookStatus(status)
	if hookID.Valid {
		repo.HookID = &hookID.Int64
	}
	if hookSyncedAt.Valid && hookSyncedAt.String != "" {
		t := parseTime(hookSyncedAt.String)
		repo.HookSyncedAt = &t
	}
	repo.CreatedAt = parseTime(createdAt)
	repo.UpdatedAt = parseTime(updatedAt)
	repo.PushedAt = parseTime(pushedAt)
	repo.DiscoveredAt = parseTime(discoveredAt)

	return &repo, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
