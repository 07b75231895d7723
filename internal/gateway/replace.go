package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dlclark/regexp2"
	"go.uber.org/zap"
)

// ReplaceMode selects how UpdateByKeyword interprets the keyword.
type ReplaceMode string

const (
	// ModePattern compiles the keyword as an ECMAScript regular expression
	// and replaces every match. $&, $1 and $$ in the replacement
	// expand as in JavaScript. Characters like "." or "+" in a
	// plain-text keyword are pattern syntax.
	ModePattern ReplaceMode = "pattern"
	// ModeLiteral replaces every occurrence of the exact keyword text.
	ModeLiteral ReplaceMode = "literal"
)

// ParseReplaceMode validates a mode name.
func ParseReplaceMode(s string) (ReplaceMode, error) {
	switch m := ReplaceMode(s); m {
	case ModePattern, ModeLiteral:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

const maxCachedPatterns = 256

// matchTimeout bounds backtracking on a single keyword match.
const matchTimeout = time.Second

// replacer caches compiled keyword patterns.
type replacer struct {
	cache  sync.Map
	cached atomic.Int32
}

func newReplacer() *replacer {
	return &replacer{}
}

func (r *replacer) compile(pattern string) (*regexp2.Regexp, error) {
	if cached, ok := r.cache.Load(pattern); ok {
		return cached.(*regexp2.Regexp), nil
	}

	re, err := regexp2.Compile(pattern, regexp2.ECMAScript)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	re.MatchTimeout = matchTimeout

	if r.cached.Load() < maxCachedPatterns {
		if _, loaded := r.cache.LoadOrStore(pattern, re); !loaded {
			r.cached.Add(1)
		}
	}
	return re, nil
}

// replace returns content with every keyword occurrence substituted and
// the number of substitutions made.
func (r *replacer) replace(content, keyword, replacement string, mode ReplaceMode) (string, int, error) {
	switch mode {
	case ModeLiteral:
		return strings.ReplaceAll(content, keyword, replacement), strings.Count(content, keyword), nil
	case ModePattern:
		re, err := r.compile(keyword)
		if err != nil {
			return "", 0, err
		}
		n, err := countMatches(re, content)
		if err != nil {
			return "", 0, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
		}
		out, err := re.Replace(content, replacement, -1, -1)
		if err != nil {
			return "", 0, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
		}
		return out, n, nil
	default:
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
}

func countMatches(re *regexp2.Regexp, content string) (int, error) {
	n := 0
	m, err := re.FindStringMatch(content)
	for m != nil && err == nil {
		n++
		m, err = re.FindNextMatch(m)
	}
	return n, err
}

// UpdateByKeyword rewrites the about page with every occurrence of keyword
// replaced. An empty mode uses the gateway default.
func (g *Gateway) UpdateByKeyword(ctx context.Context, keyword, replacement string, mode ReplaceMode) (err error) {
	if mode == "" {
		mode = g.mode
	}

	t := g.timer("update_keyword")
	defer func() { t.StopErr(err) }()

	// Validate the pattern before touching the file
	if mode == ModePattern {
		if _, err = g.replacer.compile(keyword); err != nil {
			return err
		}
	}

	file := g.paths.About
	data, err := g.store.ReadFile(ctx, file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}

	updated, n, err := g.replacer.replace(string(data), keyword, replacement, mode)
	if err != nil {
		return err
	}

	if err = g.store.WriteFile(ctx, file, []byte(updated)); err != nil {
		return fmt.Errorf("write %s: %w", file, err)
	}

	g.logger.Info("File updated",
		zap.String("file", file),
		zap.String("mode", string(mode)),
		zap.Int("replacements", n),
	)
	return nil
}
