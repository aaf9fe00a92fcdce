package navindex

import "github.com/sgx-labs/docsite/internal/content"

// DefaultCard is a built-in quick-start card naming a section.
type DefaultCard struct {
	Title       string
	Description string
	SectionID   string
}

// DefaultCatalog is used when the index document has no usable quick-start
// section.
var DefaultCatalog = []DefaultCard{
	{Title: "设计原则", Description: "了解设计系统的核心理念与原则", SectionID: "A_设计原则"},
	{Title: "基础规范", Description: "颜色、字体、间距等基础视觉规范", SectionID: "B_基础规范"},
	{Title: "组件", Description: "可复用的界面组件与使用说明", SectionID: "C_组件"},
	{Title: "交互模式", Description: "常见业务场景的交互模式", SectionID: "D_交互模式"},
	{Title: "设计资源", Description: "图标、模板与素材下载", SectionID: "E_设计资源"},
	{Title: "更新日志", Description: "版本变更与发布记录", SectionID: "F_更新日志"},
}

// DefaultCards resolves DefaultCatalog against tree. A card's section is
// matched by ID, then by label so ordering prefixes may differ. The href is
// the first document of the section, or the section route when it has none.
func DefaultCards(tree content.Tree) []Card {
	cards := make([]Card, 0, len(DefaultCatalog))
	for _, d := range DefaultCatalog {
		cards = append(cards, Card{
			Title:       d.Title,
			Description: d.Description,
			Href:        defaultHref(d, tree),
		})
	}
	return cards
}

func defaultHref(d DefaultCard, tree content.Tree) string {
	section, ok := tree.FindSection(d.SectionID)
	if !ok {
		want := content.Label(d.SectionID)
		for _, s := range tree.Sections {
			if s.Label == want {
				section, ok = s, true
				break
			}
		}
	}
	if !ok {
		return content.SectionRoute(d.SectionID)
	}
	if len(section.Items) == 0 {
		return content.SectionRoute(section.ID)
	}
	return content.Route(section.ID, section.Items[0].ID)
}
