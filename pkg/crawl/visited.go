package crawl

// VisitedSet records the URLs a single crawl has accepted. Entries are never removed.
type VisitedSet struct {
	urls  map[string]struct{}
	order []string
}

// NewVisitedSet creates an empty set
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{
		urls: make(map[string]struct{}),
	}
}

// Add marks url as visited. It returns false if it was already present.
func (v *VisitedSet) Add(url string) bool {
	if _, ok := v.urls[url]; ok {
		return false
	}
	v.urls[url] = struct{}{}
	v.order = append(v.order, url)
	return true
}

// Has checks if url has been visited
func (v *VisitedSet) Has(url string) bool {
	_, ok := v.urls[url]
	return ok
}

// Len returns the number of visited URLs
func (v *VisitedSet) Len() int {
	return len(v.urls)
}

// URLs returns the visited URLs in acceptance order
func (v *VisitedSet) URLs() []string {
	out := make([]string, len(v.order))
	copy(out, v.order)
	return out
}
