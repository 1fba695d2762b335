package history

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
)

// NewStore creates a postgres-backed store when configured, otherwise a
// JSON-file store under dataDir.
func NewStore(ctx context.Context, databaseURL, dataDir string, retention int, log *logrus.Logger) (Store, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return NewFileStore(dataDir, retention, log)
	}
	return NewPostgresStore(ctx, databaseURL, retention)
}
