package gateway

import (
	"context"
	"fmt"
	"path"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TagCount is the number of <img> elements in one file.
type TagCount struct {
	File  string `json:"file"`
	Count int    `json:"count"`
}

// CountImageTags counts <img> elements in every matching file of the HTML
// directory. Results follow listing order. Completion does not depend on
// how many entries the directory has, so a directory without HTML files
// yields an empty, non-nil slice. Any read or parse failure fails the
// whole count.
func (g *Gateway) CountImageTags(ctx context.Context) (counts []TagCount, err error) {
	t := g.timer("count_img_tags")
	defer func() { t.StopErr(err) }()

	entries, err := g.store.ReadDir(ctx, g.paths.HTMLDir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", g.paths.HTMLDir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir {
			continue
		}
		if ok, _ := doublestar.Match(g.paths.HTMLPattern, e.Name); ok {
			names = append(names, e.Name)
		}
	}

	counts = make([]TagCount, len(names))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)

	for i, name := range names {
		eg.Go(func() error {
			file := path.Join(g.paths.HTMLDir, name)
			data, err := g.store.ReadFile(egCtx, file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}
			n, err := g.counter.Count(data, "img")
			if err != nil {
				return fmt.Errorf("count %s: %w", file, err)
			}
			counts[i] = TagCount{File: name, Count: n}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, c := range counts {
		total += c.Count
	}
	if g.metrics != nil {
		g.metrics.AddImgTags(total)
	}
	g.logger.Debug("Counted img tags", zap.Int("files", len(counts)), zap.Int("total", total))
	return counts, nil
}
