package common

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, n *CrawlNode) map[string]any {
	t.Helper()
	data, err := json.Marshal(n)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	return got
}

func TestCrawlNode_VisitedPageAlwaysHasHeadingAndDescription(t *testing.T) {
	title := ""
	got := decode(t, &CrawlNode{URL: "https://site.test/", Title: &title, Category: RootSeed})

	assert.Equal(t, "", got["title"])
	assert.Contains(t, got, "h1")
	assert.Equal(t, "", got["h1"])
	assert.Contains(t, got, "description")
	assert.Equal(t, "", got["description"])
	assert.Equal(t, []any{}, got["children"])
	assert.NotContains(t, got, "mainMenuLinks")
}

func TestCrawlNode_StubOmitsHeadingAndDescription(t *testing.T) {
	got := decode(t, NewStub("tel:123", FooterLinks))

	assert.Contains(t, got, "title")
	assert.Nil(t, got["title"])
	assert.NotContains(t, got, "h1")
	assert.NotContains(t, got, "description")
	assert.Equal(t, "Footer Links", got["category"])
}

func TestCrawlNode_NestedChildrenUseWireForm(t *testing.T) {
	title := "Home"
	child := "A"
	root := &CrawlNode{
		URL:           "https://site.test/",
		Title:         &title,
		H1:            "Welcome",
		MainMenuLinks: []string{"https://site.test/a"},
		Children: []*CrawlNode{
			{URL: "https://site.test/a", Title: &child, Category: MainMenuLinks},
			NewStub("https://other.test/", MainMenuLinks),
		},
		Category: RootSeed,
	}
	got := decode(t, root)
	assert.Equal(t, "Welcome", got["h1"])

	children := got["children"].([]any)
	require.Len(t, children, 2)
	visited := children[0].(map[string]any)
	assert.Equal(t, "", visited["h1"])
	assert.Equal(t, []any{}, visited["children"], "nil children encode as an empty list")
	assert.NotContains(t, children[1].(map[string]any), "h1")

	var back CrawlNode
	data, err := json.Marshal(root)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "Welcome", back.H1)
	assert.Len(t, back.Children, 2)
}
