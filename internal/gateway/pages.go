package gateway

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const basicPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>New Page</title>
</head>
<body>
  <h1>Hello, World!</h1>
  <p>This is a basic HTML file generated dynamically.</p>
</body>
</html>
`

const numberedPageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>File %[1]d</title>
</head>
<body>
  <h1>File %[1]d</h1>
  <p>This is file %[1]d content.</p>
</body>
</html>
`

// NumberedPageName returns the file name GeneratePages uses for index i.
func NumberedPageName(i int) string {
	return fmt.Sprintf("file_%d.html", i)
}

// NumberedPage returns the content GeneratePages writes for index i.
func NumberedPage(i int) []byte {
	return []byte(fmt.Sprintf(numberedPageTemplate, i))
}

// BasicPage returns the content GenerateBasicPage writes.
func BasicPage() []byte {
	return []byte(basicPage)
}

// ParseFileCount validates an untrusted page count.
func ParseFileCount(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: missing", ErrInvalidCount)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a whole number", ErrInvalidCount, raw)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: %d is not positive", ErrInvalidCount, n)
	}
	return n, nil
}

// IndexPage reads the root page.
func (g *Gateway) IndexPage(ctx context.Context) (data []byte, err error) {
	t := g.timer("read_index")
	defer func() { t.StopErr(err) }()

	data, err = g.store.ReadFile(ctx, g.paths.Index)
	if err != nil {
		return nil, fmt.Errorf("read index page %s: %w", g.paths.Index, err)
	}
	return data, nil
}

// GenerateBasicPage writes the fixed page, overwriting any existing file,
// and returns the content written.
func (g *Gateway) GenerateBasicPage(ctx context.Context) (data []byte, err error) {
	t := g.timer("generate_basic")
	defer func() { t.StopErr(err) }()

	data = BasicPage()
	if err = g.store.WriteFile(ctx, g.paths.Generated, data); err != nil {
		return nil, fmt.Errorf("write %s: %w", g.paths.Generated, err)
	}
	if g.metrics != nil {
		g.metrics.AddFilesGenerated(1)
	}
	g.logger.Info("Generated basic page", zap.String("file", g.paths.Generated))
	return data, nil
}

// GeneratePages writes file_1.html through file_n.html in order. It stops
// at the first failed write; pages written before it are left in place.
func (g *Gateway) GeneratePages(ctx context.Context, n int) (err error) {
	if n <= 0 {
		return fmt.Errorf("%w: %d is not positive", ErrInvalidCount, n)
	}

	t := g.timer("generate_multiple")
	defer func() { t.StopErr(err) }()

	written := 0
	defer func() {
		if g.metrics != nil {
			g.metrics.AddFilesGenerated(written)
		}
	}()

	for i := 1; i <= n; i++ {
		name := NumberedPageName(i)
		if err = g.store.WriteFile(ctx, name, NumberedPage(i)); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		written++
	}

	g.logger.Info("Generated numbered pages", zap.Int("count", n))
	return nil
}
