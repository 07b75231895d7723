package gateway

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// DeleteObsolete removes the obsolete page and returns its name. A missing
// file is an error.
func (g *Gateway) DeleteObsolete(ctx context.Context) (name string, err error) {
	t := g.timer("delete")
	defer func() { t.StopErr(err) }()

	name = g.paths.Obsolete
	if err = g.store.Remove(ctx, name); err != nil {
		return name, fmt.Errorf("delete %s: %w", name, err)
	}
	g.logger.Info("File deleted", zap.String("file", name))
	return name, nil
}

// RenameSingle renames the about page to its configured new name.
func (g *Gateway) RenameSingle(ctx context.Context) (err error) {
	t := g.timer("rename_single")
	defer func() { t.StopErr(err) }()

	from, to := g.paths.About, g.paths.AboutRenamed
	if err = g.store.Rename(ctx, from, to); err != nil {
		return fmt.Errorf("rename %s to %s: %w", from, to, err)
	}
	g.logger.Info("File renamed", zap.String("from", from), zap.String("to", to))
	return nil
}
