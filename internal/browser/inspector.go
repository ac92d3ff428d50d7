package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chromedp/chromedp"

	"github.com/go-scripts/sitecrawl/pkg/common"
	"github.com/go-scripts/sitecrawl/pkg/crawl"
)

const metadataJS = `
(() => {
	const getText = (selector) => {
		const element = document.querySelector(selector);
		return element ? element.innerText : '';
	};
	const getMetaContent = (name) => {
		const element = document.querySelector('meta[name="' + name + '"]');
		return element ? element.content : '';
	};
	return {
		title: document.title,
		h1: getText('h1'),
		description: getMetaContent('description'),
		url: location.href,
	};
})()`

// linksJS takes the selector config as its only argument. The first element
// matching a selector is the region's container.
const linksJS = `
((selectors) => {
	const extractLinks = (selector) => {
		if (!selector) return [];
		const container = document.querySelector(selector);
		if (!container) return [];
		return Array.from(container.querySelectorAll('a'))
			.map(link => typeof link.href === 'string' ? link.href : '');
	};
	const out = {};
	for (const region of Object.keys(selectors)) {
		out[region] = extractLinks(selectors[region]);
	}
	return out;
})(%s)`

// Inspector evaluates metadata and region links inside a Chrome tab
type Inspector struct{}

type pageResult struct {
	Title       string `json:"title"`
	H1          string `json:"h1"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// Metadata reads title, first h1, meta description and location
func (Inspector) Metadata(ctx context.Context, p crawl.PageHandle) (common.PageMetadata, error) {
	t, err := asTab(p)
	if err != nil {
		return common.PageMetadata{}, err
	}

	var res pageResult
	if err := runTab(ctx, t, chromedp.Evaluate(metadataJS, &res)); err != nil {
		return common.PageMetadata{}, fmt.Errorf("evaluate metadata: %w", err)
	}
	return common.PageMetadata{
		Title:       res.Title,
		H1:          res.H1,
		Description: res.Description,
		ResolvedURL: res.URL,
	}, nil
}

// LinksBySelectors collects a.href values under each region's container
func (Inspector) LinksBySelectors(ctx context.Context, p crawl.PageHandle, selectors common.SelectorConfig) (common.RegionLinks, error) {
	t, err := asTab(p)
	if err != nil {
		return nil, err
	}

	arg, err := json.Marshal(selectors)
	if err != nil {
		return nil, fmt.Errorf("encode selectors: %w", err)
	}

	var raw map[string][]string
	if err := runTab(ctx, t, chromedp.Evaluate(fmt.Sprintf(linksJS, arg), &raw)); err != nil {
		return nil, fmt.Errorf("evaluate region links: %w", err)
	}

	links := make(common.RegionLinks, len(common.Regions))
	for _, r := range common.Regions {
		links[r] = raw[string(r)]
		if links[r] == nil {
			links[r] = []string{}
		}
	}
	return links, nil
}
