package markup

import (
	"fmt"

	"github.com/antchfx/htmlquery"
)

// Engine names accepted by NewCounter.
const (
	EngineCSS   = "css"
	EngineXPath = "xpath"
)

// Counter counts elements with a given tag name in an HTML document.
type Counter interface {
	Count(data []byte, tag string) (int, error)
}

// NewCounter returns the counter for engine.
func NewCounter(engine string) (Counter, error) {
	switch engine {
	case EngineCSS, "":
		return CSSCounter{}, nil
	case EngineXPath:
		return XPathCounter{}, nil
	default:
		return nil, fmt.Errorf("unknown count engine %q", engine)
	}
}

// CSSCounter counts with goquery selectors.
type CSSCounter struct{}

func (CSSCounter) Count(data []byte, tag string) (int, error) {
	doc, err := LoadDocument(data)
	if err != nil {
		return 0, fmt.Errorf("parse html: %w", err)
	}
	return doc.Find(tag).Length(), nil
}

// XPathCounter counts with htmlquery.
type XPathCounter struct{}

func (XPathCounter) Count(data []byte, tag string) (int, error) {
	root, err := LoadNode(data)
	if err != nil {
		return 0, fmt.Errorf("parse html: %w", err)
	}
	nodes, err := htmlquery.QueryAll(root, "//"+tag)
	if err != nil {
		return 0, fmt.Errorf("xpath //%s: %w", tag, err)
	}
	return len(nodes), nil
}
