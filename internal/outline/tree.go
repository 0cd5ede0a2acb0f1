package outline

import (
	"strconv"
	"strings"
)

// Node is one entry in the nested rendition of an outline.
type Node struct {
	Level    string  `json:"level"`
	Text     string  `json:"text"`
	Page     int     `json:"page"`
	Children []*Node `json:"children,omitempty"`
}

// Tree nests the flat heading list by tier. Each heading becomes a child of
// the nearest preceding heading with a shallower tier, so a tier jump (H1
// straight to H3) still nests under the last H1, preserving reading order.
func (o Outline) Tree() []*Node {
	type stackEntry struct {
		node  *Node
		level int
	}

	root := &Node{}
	stack := []stackEntry{{node: root, level: 0}}

	for _, h := range o.Headings {
		level := headingTier(h.Level)
		n := &Node{Level: h.Level, Text: h.Text, Page: h.Page}

		for len(stack) > 1 && stack[len(stack)-1].level >= level {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1].node
		parent.Children = append(parent.Children, n)
		stack = append(stack, stackEntry{node: n, level: level})
	}

	if root.Children == nil {
		return []*Node{}
	}
	return root.Children
}

// headingTier parses the numeric part of a tier tag ("H2" is 2). Malformed
// tags sort deepest so they can never capture children.
func headingTier(tag string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(tag, "H"))
	if err != nil || n < 1 {
		return 99
	}
	return n
}
