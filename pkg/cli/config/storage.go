package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/relnote/pkg/repository/sqlite"
)

type Storage struct {
	path string
}

func (x *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "db-path",
			Usage:       "Path of the SQLite database file",
			Category:    "Storage",
			Destination: &x.path,
			Sources:     cli.EnvVars("RELNOTE_DB_PATH"),
			Value:       "relnote.db",
		},
	}
}

func (x Storage) Open() (*sqlite.Store, error) {
	return sqlite.Open(x.path)
}

func (x Storage) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("path", x.path),
	)
}
