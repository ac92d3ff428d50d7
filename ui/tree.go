package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/go-scripts/sitecrawl/pkg/common"
)

var (
	pageStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	categoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Italic(true)
	branchStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).MarginRight(1)
)

// RenderTree draws a crawl tree. Visited pages show their title, stubs only their URL.
func RenderTree(root *common.CrawlNode) string {
	if root == nil {
		return ""
	}
	return buildTree(root).String()
}

func buildTree(n *common.CrawlNode) *tree.Tree {
	t := tree.Root(nodeLabel(n)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(branchStyle)
	for _, child := range n.Children {
		if len(child.Children) == 0 {
			t.Child(nodeLabel(child))
			continue
		}
		t.Child(buildTree(child))
	}
	return t
}

func nodeLabel(n *common.CrawlNode) string {
	category := ""
	if n.Category != "" {
		category = " " + categoryStyle.Render(fmt.Sprintf("[%s]", n.Category))
	}
	if n.IsStub() {
		return stubStyle.Render(n.URL) + category
	}
	title := *n.Title
	if title == "" {
		title = "(untitled)"
	}
	return pageStyle.Render(title) + " " + n.URL + category
}
