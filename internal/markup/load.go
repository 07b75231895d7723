package markup

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// MaxHTMLSize is the largest file the counters will parse.
const MaxHTMLSize = 10 * 1024 * 1024

// ErrTooLarge is returned for documents over MaxHTMLSize.
var ErrTooLarge = errors.New("html document too large")

// DetectCharset guesses the encoding of data, defaulting to utf-8.
func DetectCharset(data []byte) string {
	if len(data) == 0 {
		return "utf-8"
	}
	result, err := chardet.NewHtmlDetector().DetectBest(data)
	if err != nil || result == nil || result.Charset == "" {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}

// prescanLimit is how far into a document a charset declaration is looked for.
const prescanLimit = 1024

// DeclaredCharset returns the encoding named by a <meta charset> or
// <meta http-equiv="Content-Type"> tag near the top of data, or "" when
// there is none or the name is unknown.
func DeclaredCharset(data []byte) string {
	if len(data) > prescanLimit {
		data = data[:prescanLimit]
	}

	z := html.NewTokenizer(bytes.NewReader(data))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "meta" || !hasAttr {
				continue
			}

			var cs, httpEquiv, content string
			for more := true; more; {
				var key, val []byte
				key, val, more = z.TagAttr()
				switch string(key) {
				case "charset":
					cs = string(val)
				case "http-equiv":
					httpEquiv = strings.ToLower(string(val))
				case "content":
					content = string(val)
				}
			}
			if cs == "" && httpEquiv == "content-type" {
				if _, params, err := mime.ParseMediaType(content); err == nil {
					cs = params["charset"]
				}
			}
			if cs == "" {
				continue
			}
			if enc, _ := charset.Lookup(cs); enc != nil {
				return strings.ToLower(strings.TrimSpace(cs))
			}
		}
	}
}

// utf8Reader returns data transcoded to UTF-8. A charset declared in the
// document wins over the detected one; unknown encodings pass the bytes
// through unchanged.
func utf8Reader(data []byte) (io.Reader, error) {
	if len(data) > MaxHTMLSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, len(data), MaxHTMLSize)
	}

	label := DeclaredCharset(data)
	if label == "" {
		label = DetectCharset(data)
	}
	contentType := "text/html; charset=" + label
	r, err := charset.NewReader(bytes.NewReader(data), contentType)
	if err != nil {
		return bytes.NewReader(data), nil
	}
	return r, nil
}

// LoadDocument parses data into a goquery document.
func LoadDocument(data []byte) (*goquery.Document, error) {
	r, err := utf8Reader(data)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(r)
}

// LoadNode parses data into a node tree for XPath queries.
func LoadNode(data []byte) (*html.Node, error) {
	r, err := utf8Reader(data)
	if err != nil {
		return nil, err
	}
	return htmlquery.Parse(r)
}
