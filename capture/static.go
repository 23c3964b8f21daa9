package capture

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vizdrift/vizdrift/vistree"
)

// FetchStatic captures a page over plain HTTP, without a browser. The
// resulting snapshot is structure-only: no layout boxes, no groups. Enough
// for raw structural comparison, and the cheap first rung before escalating
// to a browser capture.
func FetchStatic(ctx context.Context, client *http.Client, url string, opts Options) (*vistree.VisualTreeAnalysis, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("capture: static request: %w", err)
	}
	req.Header.Set("User-Agent", "vizdrift/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("capture: static fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("capture: static fetch %s: status %d", url, resp.StatusCode)
	}

	return ParseStatic(resp.Body, url, opts)
}

// ParseStatic builds a structure-only snapshot from raw HTML.
func ParseStatic(r io.Reader, url string, opts Options) (*vistree.VisualTreeAnalysis, error) {
	opts.defaults()

	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("capture: parse html: %w", err)
	}

	var raws []rawElement
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && !skipStaticTag(n.DataAtom) {
			raws = append(raws, rawFromHTMLNode(n))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return buildAnalysis(url, opts, raws, true), nil
}

func skipStaticTag(a atom.Atom) bool {
	switch a {
	case atom.Script, atom.Style, atom.Noscript, atom.Template,
		atom.Meta, atom.Link, atom.Head, atom.Html, atom.Title:
		return true
	}
	return false
}

func rawFromHTMLNode(n *html.Node) rawElement {
	r := rawElement{
		Tag:  n.Data,
		Aria: map[string]string{},
	}

	for _, a := range n.Attr {
		switch {
		case a.Key == "id":
			r.ID = a.Val
		case a.Key == "class":
			r.Classes = strings.Fields(a.Val)
		case a.Key == "role":
			r.Role = a.Val
		case a.Key == "aria-label":
			r.AriaLabel = a.Val
		case strings.HasPrefix(a.Key, "aria-"):
			r.Aria[strings.TrimPrefix(a.Key, "aria-")] = a.Val
		case a.Key == "style":
			// Inline style carries no structural signal here.
		default:
			if r.Attrs == nil {
				r.Attrs = map[string]string{}
			}
			r.Attrs[a.Key] = a.Val
		}
	}
	if len(r.Aria) == 0 {
		r.Aria = nil
	}

	r.Text = directText(n)

	switch n.DataAtom {
	case atom.A, atom.Button, atom.Input, atom.Select, atom.Textarea:
		r.Interactive = true
	}
	return r
}

// directText collects the node's own text children, not the whole subtree.
func directText(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			t := strings.TrimSpace(c.Data)
			if t != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(t)
			}
		}
	}
	return sb.String()
}
