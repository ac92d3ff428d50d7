package common

import "encoding/json"

// Category labels the page region through which a link was discovered
type Category string

const (
	RootSeed          Category = "Root Seed"
	MainMenuLinks     Category = "Main Menu Links"
	MainContentLinks  Category = "Main Content Links"
	HeaderLinks       Category = "Header Links"
	FooterLinks       Category = "Footer Links"
	OtherContentLinks Category = "Other Content Links"
	StubLinks         Category = "Stub Links"
)

// Region names a selector-defined zone of a page
type Region string

const (
	RegionMainMenu     Region = "mainMenu"
	RegionMain         Region = "main"
	RegionHeader       Region = "header"
	RegionFooter       Region = "footer"
	RegionOtherContent Region = "otherContent"
)

// Regions lists the five regions in the order their links are emitted
var Regions = []Region{
	RegionMainMenu,
	RegionMain,
	RegionHeader,
	RegionFooter,
	RegionOtherContent,
}

// Category returns the label given to links discovered in the region
func (r Region) Category() Category {
	switch r {
	case RegionMainMenu:
		return MainMenuLinks
	case RegionMain:
		return MainContentLinks
	case RegionHeader:
		return HeaderLinks
	case RegionFooter:
		return FooterLinks
	case RegionOtherContent:
		return OtherContentLinks
	}
	return StubLinks
}

// SelectorConfig maps each region to an optional CSS selector
type SelectorConfig struct {
	MainMenu     string `json:"mainMenu" yaml:"main_menu"`
	Main         string `json:"main" yaml:"main"`
	Header       string `json:"header" yaml:"header"`
	Footer       string `json:"footer" yaml:"footer"`
	OtherContent string `json:"otherContent" yaml:"other_content"`
}

// Selector returns the selector configured for a region, or "" when unset
func (s SelectorConfig) Selector(r Region) string {
	switch r {
	case RegionMainMenu:
		return s.MainMenu
	case RegionMain:
		return s.Main
	case RegionHeader:
		return s.Header
	case RegionFooter:
		return s.Footer
	case RegionOtherContent:
		return s.OtherContent
	}
	return ""
}

// Empty reports whether no region has a selector
func (s SelectorConfig) Empty() bool {
	for _, r := range Regions {
		if s.Selector(r) != "" {
			return false
		}
	}
	return true
}

// RegionLinks holds the hrefs found inside each region's container
type RegionLinks map[Region][]string

// PageMetadata is what a loaded page reports about itself
type PageMetadata struct {
	Title       string
	H1          string
	Description string
	ResolvedURL string
}

// CrawlRequest is one crawl invocation
type CrawlRequest struct {
	URL       string
	MaxDepth  int
	Selectors SelectorConfig
}

// CrawlNode is one visited page or stub reference in the output tree.
// Title is nil for stub nodes.
type CrawlNode struct {
	URL               string       `json:"url"`
	Title             *string      `json:"title"`
	H1                string       `json:"h1,omitempty"`
	Description       string       `json:"description,omitempty"`
	MainMenuLinks     []string     `json:"mainMenuLinks,omitempty"`
	MainLinks         []string     `json:"mainLinks,omitempty"`
	HeaderLinks       []string     `json:"headerLinks,omitempty"`
	FooterLinks       []string     `json:"footerLinks,omitempty"`
	OtherContentLinks []string     `json:"otherContentLinks,omitempty"`
	Children          []*CrawlNode `json:"children"`
	Category          Category     `json:"category,omitempty"`
}

// nodeJSON is the wire form of CrawlNode. h1 and description are always
// present on visited pages, even when empty, and absent on stubs.
type nodeJSON struct {
	URL               string       `json:"url"`
	Title             *string      `json:"title"`
	H1                *string      `json:"h1,omitempty"`
	Description       *string      `json:"description,omitempty"`
	MainMenuLinks     []string     `json:"mainMenuLinks,omitempty"`
	MainLinks         []string     `json:"mainLinks,omitempty"`
	HeaderLinks       []string     `json:"headerLinks,omitempty"`
	FooterLinks       []string     `json:"footerLinks,omitempty"`
	OtherContentLinks []string     `json:"otherContentLinks,omitempty"`
	Children          []*CrawlNode `json:"children"`
	Category          Category     `json:"category,omitempty"`
}

func (n CrawlNode) MarshalJSON() ([]byte, error) {
	out := nodeJSON{
		URL:               n.URL,
		Title:             n.Title,
		MainMenuLinks:     n.MainMenuLinks,
		MainLinks:         n.MainLinks,
		HeaderLinks:       n.HeaderLinks,
		FooterLinks:       n.FooterLinks,
		OtherContentLinks: n.OtherContentLinks,
		Children:          n.Children,
		Category:          n.Category,
	}
	if !n.IsStub() {
		out.H1 = &n.H1
		out.Description = &n.Description
	}
	if out.Children == nil {
		out.Children = []*CrawlNode{}
	}
	return json.Marshal(out)
}

// IsStub reports whether the node was never visited
func (n *CrawlNode) IsStub() bool {
	return n.Title == nil
}

// NewStub builds a terminal node for a link that is not followed
func NewStub(url string, category Category) *CrawlNode {
	return &CrawlNode{
		URL:      url,
		Children: []*CrawlNode{},
		Category: category,
	}
}

// SetRegionLinks records the raw links extracted for a region
func (n *CrawlNode) SetRegionLinks(r Region, links []string) {
	switch r {
	case RegionMainMenu:
		n.MainMenuLinks = links
	case RegionMain:
		n.MainLinks = links
	case RegionHeader:
		n.HeaderLinks = links
	case RegionFooter:
		n.FooterLinks = links
	case RegionOtherContent:
		n.OtherContentLinks = links
	}
}

// Count returns the number of nodes in the tree rooted at n
func (n *CrawlNode) Count() int {
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}
