// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

// Package htmlutils provides utility functions for working with HTML.
package htmlutils

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// maxSummary bounds the text extracted from an error page.
const maxSummary = 200

// Node2string appends the whitespace-normalized text of n to sb.
func Node2string(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		tmp := strings.Join(strings.Fields(n.Data), " ")
		if len(tmp) > 0 {
			if sb.Len() != 0 {
				sb.WriteByte(' ')
			}

			sb.WriteString(tmp)
		}

		return
	}

	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		Node2string(child, sb)
	}
}

// Text returns the whitespace-normalized text content of n.
func Text(n *html.Node) string {
	sb := strings.Builder{}
	Node2string(n, &sb)

	return sb.String()
}

// Validates that response seems to be an HTML response.
func hasHTMLContentType(media string) bool {
	const expectedMedia = "text/html"

	return strings.EqualFold(
		expectedMedia,
		media[0:min(len(media), len(expectedMedia))],
	)
}

// AsReader converts an HTML response body to an io.Reader with the correct charset.
func AsReader(resp *http.Response) (io.Reader, error) {
	media := resp.Header.Get("Content-Type")
	if !hasHTMLContentType(media) {
		return nil, fmt.Errorf("media type is %s", media)
	}

	rr, err := charset.NewReader(resp.Body, media)
	if err != nil {
		return nil, err
	}

	return rr, nil
}

// AsNode parses an io.Reader as an HTML node.
func AsNode(r io.Reader) (*html.Node, error) {
	n, err := html.Parse(r)
	if nil != err {
		return nil, fmt.Errorf("parsing body as HTML: %w", err)
	}

	return n, nil
}

// Summary returns a short description of an HTML error page: its title when
// present, else the beginning of its text. Non-HTML bodies yield "".
func Summary(resp *http.Response) string {
	r, err := AsReader(resp)
	if err != nil {
		return ""
	}

	n, err := AsNode(io.LimitReader(r, 64<<10))
	if err != nil {
		return ""
	}

	text := ""
	if title := First(n, func(n *html.Node) bool { return IsElement(n, "title") }); title != nil {
		text = Text(title)
	}

	if text == "" {
		if body := First(n, func(n *html.Node) bool { return IsElement(n, "body") }); body != nil {
			text = Text(body)
		}
	}

	if len(text) > maxSummary {
		text = text[:maxSummary] + "…"
	}

	return text
}

// IsElement reports whether n is an element with the given tag.
func IsElement(n *html.Node, tag string) bool {
	return n.Type == html.ElementNode && strings.EqualFold(n.Data, tag)
}

// Attr returns the value of the named attribute of n.
func Attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}

	return "", false
}

// HasClass reports whether n carries the CSS class.
func HasClass(n *html.Node, class string) bool {
	v, ok := Attr(n, "class")
	if !ok {
		return false
	}

	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}

	return false
}

// FindAll returns, in document order, the nodes below n matching pred.
func FindAll(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var found []*html.Node

	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if pred(n) {
			found = append(found, n)
		}

		for child := n.FirstChild; child != nil; child = child.NextSibling {
			visit(child)
		}
	}
	visit(n)

	return found
}

// First returns the first node below n matching pred, or nil.
func First(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if pred(n) {
		return n
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := First(child, pred); found != nil {
			return found
		}
	}

	return nil
}

// ByClass returns a predicate matching elements carrying class.
func ByClass(class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && HasClass(n, class)
	}
}
