package wikilink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgx-labs/docsite/internal/content"
)

func testTree() content.Tree {
	return content.Tree{Sections: []content.Section{
		{ID: "B_组件", Label: "组件", Items: []content.Item{
			{ID: "01_Button", Path: "B_组件/01_Button.md", Label: "Button"},
			{ID: "color", Path: "B_组件/color.md", Label: "color"},
		}},
		{ID: "C_基础规范", Label: "基础规范", Items: []content.Item{
			{ID: "color", Path: "C_基础规范/color.md", Label: "color"},
		}},
	}}
}

func TestResolve(t *testing.T) {
	colorOnly := content.Tree{Sections: []content.Section{
		{ID: "C_基础规范", Items: []content.Item{{ID: "color"}}},
	}}

	out := Resolve("[[color]]", colorOnly)

	assert.Contains(t, out, content.Route("C_基础规范", "color"))
	assert.Contains(t, out, "/docs/C_%E5%9F%BA%E7%A1%80%E8%A7%84%E8%8C%83/color")
	assert.Equal(t, "[color]("+content.Route("C_基础规范", "color")+")", out)
}

func TestResolve_Cases(t *testing.T) {
	tree := testTree()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"missing target with label", "see [[missing|Label]] here", "see Label here"},
		{"missing target", "[[missing]]", "missing"},
		{"first section wins", "[[color]]", "[color](" + content.Route("B_组件", "color") + ")"},
		{"explicit section", "[[C_基础规范/color|Color]]", "[Color](" + content.Route("C_基础规范", "color") + ")"},
		{"md suffix stripped", "[[01_Button.md]]", "[01_Button](" + content.Route("B_组件", "01_Button") + ")"},
		{"escaped pipe", `| [[01_Button\|Button]] |`, "| [Button](" + content.Route("B_组件", "01_Button") + ") |"},
		{"unclosed", "text [[open and more", "text [[open and more"},
		{"empty target", "a [[]] b", "a [[]] b"},
		{"no links", "plain *markdown*", "plain *markdown*"},
		{"nested opener", "[[a [[01_Button]]", "[[a [01_Button](" + content.Route("B_组件", "01_Button") + ")"},
		{"multiple", "[[missing]] and [[color|c]]", "missing and [c](" + content.Route("B_组件", "color") + ")"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.in, tree))
		})
	}
}

func TestResolve_Pure(t *testing.T) {
	tree := testTree()
	in := "[[color]] [[missing|x]] [[B_组件/01_Button]]"

	assert.Equal(t, Resolve(in, tree), Resolve(in, tree))
}

func TestLinks(t *testing.T) {
	links := Links("a [[x|X]] b [[y.md]] c [[ ]] [[z")

	require.Len(t, links, 2)
	assert.Equal(t, Link{Target: "x", Label: "X", Raw: "[[x|X]]", Start: 2}, links[0])
	assert.Equal(t, "y", links[1].Target)
	assert.Equal(t, "y", links[1].Text())
}

func TestHref(t *testing.T) {
	tree := testTree()

	href, ok := Href("01_Button", tree)
	require.True(t, ok)
	assert.Equal(t, content.Route("B_组件", "01_Button"), href)

	_, ok = Href("nope", tree)
	assert.False(t, ok)

	_, ok = Href("/color", tree)
	assert.False(t, ok)
}
