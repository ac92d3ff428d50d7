package crawl

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
	"ws":    "80",
	"wss":   "443",
	"ftp":   "21",
}

// LinkClassifier resolves links against the crawl origin and decides whether they
// may be followed.
type LinkClassifier struct {
	origin string
	base   *url.URL
}

// NewLinkClassifier builds a classifier for the origin of seedURL
func NewLinkClassifier(seedURL string) (*LinkClassifier, error) {
	u, err := url.Parse(strings.TrimSpace(seedURL))
	if err != nil {
		return nil, fmt.Errorf("parse seed url: %w", err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("seed url %q is not absolute", seedURL)
	}
	origin := Origin(u)
	base, err := url.Parse(origin)
	if err != nil || origin == "null" {
		// opaque seeds (mailto:, data:) have no origin to resolve against
		base = u
	}
	return &LinkClassifier{origin: origin, base: base}, nil
}

// Origin returns the crawl origin this classifier compares against
func (c *LinkClassifier) Origin() string {
	return c.origin
}

// Resolve turns a raw href into an absolute, normalized URL
func (c *LinkClassifier) Resolve(link string) (*url.URL, error) {
	ref, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return nil, fmt.Errorf("resolve link %q: %w", link, err)
	}
	return normalize(c.base.ResolveReference(ref)), nil
}

// Filter is the first-stage link filter. Its predicate accepts same-origin links,
// mailto: and tel: links, and links of any other origin, so every link that
// resolves is kept. Following decisions are made by Classify.
func (c *LinkClassifier) Filter(links []string) ([]string, error) {
	out := make([]string, 0, len(links))
	for _, link := range links {
		u, err := c.Resolve(link)
		if err != nil {
			return nil, err
		}
		same := Origin(u) == c.origin
		if same || isContactScheme(u.Scheme) || !same {
			out = append(out, link)
		}
	}
	return out, nil
}

// Classify resolves link and reports whether it is eligible for traversal:
// same origin as the crawl, or a mailto:/tel: link.
func (c *LinkClassifier) Classify(link string) (href string, followable bool, err error) {
	u, err := c.Resolve(link)
	if err != nil {
		return "", false, err
	}
	followable = Origin(u) == c.origin || isContactScheme(u.Scheme)
	return u.String(), followable, nil
}

// Origin returns scheme://host[:port] for hierarchical URLs, dropping the scheme's
// default port, and "null" for everything else.
func Origin(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)
	if _, ok := defaultPorts[scheme]; !ok || u.Host == "" {
		return "null"
	}
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if port == defaultPorts[scheme] {
		port = ""
	}
	if port == "" && strings.Contains(host, ":") {
		return scheme + "://[" + host + "]"
	}
	if port == "" {
		return scheme + "://" + host
	}
	return scheme + "://" + net.JoinHostPort(host, port)
}

func normalize(u *url.URL) *url.URL {
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Host == "" {
		return u
	}
	host := strings.ToLower(u.Hostname())
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port := u.Port(); port != "" && port != defaultPorts[u.Scheme] {
		host += ":" + port
	}
	u.Host = host
	if u.Path == "" && u.Opaque == "" {
		u.Path = "/"
	}
	return u
}

func isContactScheme(scheme string) bool {
	scheme = strings.ToLower(scheme)
	return scheme == "mailto" || scheme == "tel"
}

// isContactURL reports whether raw is a mailto: or tel: URL
func isContactURL(raw string) bool {
	i := strings.IndexByte(raw, ':')
	if i < 0 {
		return false
	}
	return isContactScheme(raw[:i])
}
