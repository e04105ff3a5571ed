package feed

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/net/html"
)

// ScrapedConfig describes a human-facing quote page carrying a single
// locale-formatted price inside a known element.
type ScrapedConfig struct {
	Name     string
	BaseURL  string
	Selector string // element id or CSS class of the price node
	Timeout  time.Duration
}

// ScrapedSource pulls the displayed price off an HTML quote page. Markup
// drifts, so every miss (element gone, text no longer a number) yields a
// failed quote, never a crash.
type ScrapedSource struct {
	cfg    ScrapedConfig
	client *Client
}

func NewScrapedSource(cfg ScrapedConfig) *ScrapedSource {
	return &ScrapedSource{
		cfg:    cfg,
		client: NewClient(cfg.Name, cfg.Timeout, 0),
	}
}

func (s *ScrapedSource) Name() string { return s.cfg.Name }

func (s *ScrapedSource) Fetch(ctx context.Context, code string) Quote {
	body, err := s.client.Get(ctx, s.cfg.BaseURL+"/"+code)
	if err != nil {
		return failedQuote(s.cfg.Name, err.Error())
	}

	text, found := findNodeText(body, s.cfg.Selector)
	if !found {
		return failedQuote(s.cfg.Name, "price element not found: "+s.cfg.Selector)
	}

	price, err := ParseLocalePrice(text)
	if err != nil {
		return failedQuote(s.cfg.Name, "unparseable price text: "+strings.TrimSpace(text))
	}
	// the page shows one number with no bid/offer split; treat it as LTP
	return goodQuote(s.cfg.Name, decimal.Zero, decimal.Zero, price)
}

// findNodeText returns the concatenated text of the first element whose id or
// class list matches selector.
func findNodeText(body []byte, selector string) (string, bool) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", false
	}
	node := findNode(doc, selector)
	if node == nil {
		return "", false
	}
	var b strings.Builder
	collectText(node, &b)
	return b.String(), true
}

func findNode(n *html.Node, selector string) *html.Node {
	if n.Type == html.ElementNode {
		for _, attr := range n.Attr {
			switch attr.Key {
			case "id":
				if attr.Val == selector {
					return n
				}
			case "class":
				for _, cls := range strings.Fields(attr.Val) {
					if cls == selector {
						return n
					}
				}
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, selector); found != nil {
			return found
		}
	}
	return nil
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

// ParseLocalePrice strips currency markers and Indian-style thousands
// separators from a displayed price ("₹ 1,23,456.50") and parses the rest.
func ParseLocalePrice(text string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer("₹", "", "Rs.", "", "Rs", "", "INR", "", ",", "").Replace(text)
	cleaned = strings.TrimSpace(cleaned)
	// pages often append the change alongside the price; keep the first token
	if i := strings.IndexAny(cleaned, " \t\n"); i > 0 {
		cleaned = cleaned[:i]
	}
	return decimal.NewFromString(cleaned)
}
