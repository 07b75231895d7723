// Package markup parses HTML documents and counts elements in them.
//
// Documents are decoded to UTF-8 before parsing: the charset is detected
// with chardet and converted with golang.org/x/net/html/charset. Two
// counting engines are available:
//   - CSS: goquery selectors (default)
//   - XPath: antchfx/htmlquery expressions
//
// Both engines report the same count for a plain tag name.
package markup
