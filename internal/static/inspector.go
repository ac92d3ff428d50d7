package static

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/go-scripts/sitecrawl/pkg/common"
	"github.com/go-scripts/sitecrawl/pkg/crawl"
)

// Inspector reads metadata and region links from a fetched document
type Inspector struct{}

// Metadata mirrors document.title, the first h1, meta[name=description] and the
// final URL after redirects.
func (Inspector) Metadata(ctx context.Context, p crawl.PageHandle) (common.PageMetadata, error) {
	d, err := loaded(p)
	if err != nil {
		return common.PageMetadata{}, err
	}

	desc, _ := d.doc.Find(`meta[name="description"]`).First().Attr("content")
	return common.PageMetadata{
		Title:       collapseSpace(d.doc.Find("title").First().Text()),
		H1:          strings.TrimSpace(d.doc.Find("h1").First().Text()),
		Description: desc,
		ResolvedURL: d.url,
	}, nil
}

// LinksBySelectors returns the absolute href of every anchor inside the first
// element matching each region's selector.
func (Inspector) LinksBySelectors(ctx context.Context, p crawl.PageHandle, selectors common.SelectorConfig) (common.RegionLinks, error) {
	d, err := loaded(p)
	if err != nil {
		return nil, err
	}

	base := documentBase(d.doc)
	links := make(common.RegionLinks, len(common.Regions))
	for _, r := range common.Regions {
		links[r] = []string{}

		sel := selectors.Selector(r)
		if sel == "" {
			continue
		}
		m, err := cascadia.Compile(sel)
		if err != nil {
			return nil, fmt.Errorf("invalid %s selector %q: %w", r, sel, err)
		}

		container := d.doc.FindMatcher(m).First()
		container.Find("a").Each(func(_ int, a *goquery.Selection) {
			links[r] = append(links[r], absoluteHref(base, a))
		})
	}
	return links, nil
}

// documentBase honours <base href> the way the browser does for a.href
func documentBase(doc *goquery.Document) *url.URL {
	base := doc.Url
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok && base != nil {
		if ref, err := url.Parse(strings.TrimSpace(href)); err == nil {
			base = base.ResolveReference(ref)
		}
	}
	return base
}

// absoluteHref returns "" for anchors without href and the raw value when it
// cannot be resolved.
func absoluteHref(base *url.URL, a *goquery.Selection) string {
	raw, ok := a.Attr("href")
	if !ok {
		return ""
	}
	raw = strings.TrimSpace(raw)
	ref, err := url.Parse(raw)
	if err != nil || base == nil {
		return raw
	}
	return base.ResolveReference(ref).String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func loaded(p crawl.PageHandle) (*document, error) {
	d, err := asDocument(p)
	if err != nil {
		return nil, err
	}
	if d.doc == nil {
		return nil, fmt.Errorf("page %s has no document loaded", d.id)
	}
	return d, nil
}
