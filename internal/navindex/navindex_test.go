package navindex

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgx-labs/docsite/internal/content"
)

func TestSplitRow(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"pipe inside wiki-link", "| [[A|B]] | plain |", []string{"[[A|B]]", "plain"}},
		{"escaped pipe in link", `| [[A\|B]] | x |`, []string{`[[A\|B]]`, "x"}},
		{"escaped pipe in text", `| a \| b | c |`, []string{"a | b", "c"}},
		{"no outer pipes", "a | b | c", []string{"a", "b", "c"}},
		{"empty cells", "| | x |", []string{"", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitRow(tt.line))
		})
	}
}

const quickStartTableDoc = `# 内容索引

## 快速开始

| [[01_Button|按钮]] | [[C_基础规范/color|颜色]] | [[missing|缺失]] |
| --- | --- | --- |
| 按钮说明 | 颜色说明 | 缺失说明 |
| [[tabs\|标签页]] | [[X_Unknown/thing|未知]] | [[01_Button]] |
| 标签说明 | 未知说明 | 再次按钮 |

## 最近更新

| 标题 | 描述 | 状态 | 路径 |
| --- | --- | --- | --- |
| [[01_Button|按钮]] | 新增尺寸 | 已发布 | B_组件/01_Button.md |
| [[ghost|幽灵]] | 不存在 | 草稿 | B_组件/ghost.md |
| [[color]] | 色板调整 | 已发布 | ` + "`C_基础规范/color`" + ` |
| 短行 |
`

func TestParseQuickStart_Table(t *testing.T) {
	entries, err := ParseQuickStart(quickStartTableDoc, DefaultQuickStartMarker)

	require.NoError(t, err)
	require.Len(t, entries, QuickStartSize)
	assert.Equal(t, Entry{Title: "按钮", Description: "按钮说明", Target: "01_Button"}, entries[0])
	assert.Equal(t, Entry{Title: "标签页", Description: "标签说明", Target: "tabs"}, entries[3])
	assert.Equal(t, "01_Button", entries[5].Title)
}

func TestParseQuickStart_HeaderRowIsNotLinks(t *testing.T) {
	doc := `## 快速开始

| 一 | 二 | 三 |
| --- | --- | --- |
| [[a|A]] | [[b|B]] | [[c|C]] |
| da | db | dc |
| [[d|D]] | [[e|E]] | [[f|F]] |
| dd | de | df |
`
	entries, err := ParseQuickStart(doc, DefaultQuickStartMarker)

	require.NoError(t, err)
	require.Len(t, entries, 6)
	assert.Equal(t, "A", entries[0].Title)
	assert.Equal(t, "df", entries[5].Description)
}

func TestParseQuickStart_Bold(t *testing.T) {
	doc := `## 快速开始

**[[a|Alpha]]**
first

**Beta**
second
**Gamma**

third
**Delta**
fourth
**Epsilon**
fifth
**Zeta**
sixth

## 其他
**Eta**
ignored
`
	entries, err := ParseQuickStart(doc, DefaultQuickStartMarker)

	require.NoError(t, err)
	require.Len(t, entries, 6)
	assert.Equal(t, Entry{Title: "Alpha", Description: "first", Target: "a"}, entries[0])
	assert.Equal(t, Entry{Title: "Gamma", Description: "third"}, entries[2])
	assert.Equal(t, "Zeta", entries[5].Title)
}

func TestParseQuickStart_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no heading", "| [[a]] | [[b]] | [[c]] |\n"},
		{"too few rows", "## 快速开始\n\n| [[a]] | [[b]] | [[c]] |\n| --- | --- | --- |\n| x | y | z |\n"},
		{"wrong columns", "## 快速开始\n\n| [[a]] | [[b]] |\n| --- | --- |\n| x | y |\n| [[c]] | [[d]] |\n| x | y |\n"},
		{"five bold entries", "## 快速开始\n**a**\n1\n**b**\n2\n**c**\n3\n**d**\n4\n**e**\n5\n"},
		{"seven bold entries", "## 快速开始\n**a**\n**b**\n**c**\n**d**\n**e**\n**f**\n**g**\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseQuickStart(tt.doc, DefaultQuickStartMarker)
			assert.True(t, errors.Is(err, ErrMalformed), "got %v", err)
		})
	}
}

func TestParseRecentUpdates(t *testing.T) {
	rows, err := ParseRecentUpdates(quickStartTableDoc, DefaultRecentUpdatesMarker)

	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, RawUpdate{
		Target:      "01_Button",
		Title:       "按钮",
		Description: "新增尺寸",
		Status:      "已发布",
		DocPath:     "B_组件/01_Button.md",
	}, rows[0])
	assert.Equal(t, "C_基础规范/color", rows[2].DocPath)
	assert.Equal(t, "", rows[3].DocPath)

	_, err = ParseRecentUpdates("# nothing here", DefaultRecentUpdatesMarker)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func writeDoc(t *testing.T, root, rel, body string) {
	t.Helper()
	p := filepath.Join(root, content.DocsDir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
}

func newParser(root string) *Parser {
	loader := &content.Loader{Root: root}
	return &Parser{Root: root, Scope: loader.NewScope()}
}

func TestHome_FromIndexDocument(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "00_内容索引.md", quickStartTableDoc)
	writeDoc(t, root, "B_组件/01_Button.md", "# Button")
	writeDoc(t, root, "B_组件/tabs.md", "# Tabs")
	writeDoc(t, root, "C_基础规范/color.md", "# Color")

	home, err := newParser(root).Home(context.Background())

	require.NoError(t, err)
	assert.False(t, home.UsedDefaults)
	assert.Equal(t, "00_内容索引.md", home.IndexPath)
	require.Len(t, home.QuickStart, 6)
	assert.Equal(t, content.Route("B_组件", "01_Button"), home.QuickStart[0].Href)
	assert.Equal(t, content.Route("C_基础规范", "color"), home.QuickStart[1].Href)
	assert.Equal(t, "#", home.QuickStart[2].Href)
	assert.Equal(t, content.Route("B_组件", "tabs"), home.QuickStart[3].Href)
	assert.Equal(t, content.SectionRoute("X_Unknown"), home.QuickStart[4].Href)

	require.Len(t, home.RecentUpdates, 2)
	assert.Equal(t, "按钮", home.RecentUpdates[0].Title)
	assert.Equal(t, content.Route("B_组件", "01_Button"), home.RecentUpdates[0].Href)
	assert.Equal(t, "C_基础规范/color.md", home.RecentUpdates[1].DocPath)
}

func TestHome_IndexInsideSection(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "A_总览/01-content-index.md", quickStartTableDoc)
	writeDoc(t, root, "B_组件/01_Button.md", "# Button")

	home, err := newParser(root).Home(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "A_总览/01-content-index.md", home.IndexPath)
	assert.False(t, home.UsedDefaults)
}

func TestHome_EmptyDocsFallsBackToSectionRoutes(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, content.DocsDir), 0o755))

	home, err := newParser(root).Home(context.Background())

	require.NoError(t, err)
	assert.True(t, home.UsedDefaults)
	assert.Empty(t, home.RecentUpdates)
	require.Len(t, home.QuickStart, 6)
	for i, card := range home.QuickStart {
		assert.Equal(t, content.SectionRoute(DefaultCatalog[i].SectionID), card.Href)
	}
}

func TestHome_MalformedQuickStartUsesDefaults(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "00_内容索引.md", "## 快速开始\n\n**only one**\ntext\n")
	writeDoc(t, root, "02_组件/01_Button.md", "# Button")

	home, err := newParser(root).Home(context.Background())

	require.NoError(t, err)
	assert.True(t, home.UsedDefaults)
	assert.Equal(t, content.Route("02_组件", "01_Button"), home.QuickStart[2].Href)
	assert.Empty(t, home.RecentUpdates)
}

func TestHome_ScopeFromContext(t *testing.T) {
	root := t.TempDir()
	scope := (&content.Loader{Root: root}).NewScope()
	ctx := content.WithScope(context.Background(), scope)

	home, err := (&Parser{Root: root}).Home(ctx)

	require.NoError(t, err)
	assert.True(t, home.UsedDefaults)
}

func TestHome_MissingRoot(t *testing.T) {
	_, err := newParser(filepath.Join(t.TempDir(), "missing")).Home(context.Background())

	assert.True(t, errors.Is(err, content.ErrContentRoot))
}
