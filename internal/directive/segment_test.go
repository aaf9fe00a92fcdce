package directive

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func markdownOf(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		if s.Kind == KindMarkdown {
			b.WriteString(s.Content)
		}
	}
	return b.String()
}

func TestSegment_NoDirectives(t *testing.T) {
	bodies := []string{
		"# Title\n\nSome text.\n",
		"no trailing newline",
		"",
		":::component-preview type=\"bad type\":::\n",
	}
	seg := &Segmenter{}
	for _, body := range bodies {
		got := seg.Segment(body)
		require.Len(t, got, 1, body)
		assert.Equal(t, Segment{Kind: KindMarkdown, Content: body}, got[0])
	}
}

func TestSegment_WidgetWithTable(t *testing.T) {
	body := "# Button\n\nIntro.\n\n" +
		":::component-preview type=\"button\":::\n" +
		"\n" +
		"<!-- props -->\n" +
		"| prop | type |\n" +
		"| --- | --- |\n" +
		"| size | string |\n" +
		"\n" +
		"After table.\n"

	got := (&Segmenter{}).Segment(body)

	require.Len(t, got, 3)
	assert.Equal(t, Segment{Kind: KindMarkdown, Content: "# Button\n\nIntro.\n\n"}, got[0])
	assert.Equal(t, KindWidget, got[1].Kind)
	assert.Equal(t, "button", got[1].WidgetType)
	assert.True(t, got[1].HasTable)
	assert.Equal(t, "| prop | type |\n| --- | --- |\n| size | string |\n", got[1].Table)
	assert.Equal(t, "\n<!-- props -->\n\nAfter table.\n", got[2].Content)

	assert.Equal(t, "# Button\n\nIntro.\n\n\n<!-- props -->\n\nAfter table.\n", markdownOf(got))
}

func TestSegment_WidgetWithoutTable(t *testing.T) {
	body := "Before\n:::component-preview type=\"tabs\":::\n\nJust prose.\n"

	got := (&Segmenter{}).Segment(body)

	require.Len(t, got, 3)
	assert.Equal(t, "Before\n", got[0].Content)
	assert.Equal(t, Segment{Kind: KindWidget, WidgetType: "tabs"}, got[1])
	assert.Equal(t, "\nJust prose.\n", got[2].Content)
}

func TestSegment_AdjacentWidgetsOmitEmptyMarkdown(t *testing.T) {
	body := ":::component-preview type=\"button\":::\n" +
		"  :::component-preview type=\"badge\":::  \n"

	got := (&Segmenter{}).Segment(body)

	require.Len(t, got, 2)
	assert.Equal(t, "button", got[0].WidgetType)
	assert.Equal(t, "badge", got[1].WidgetType)
	assert.Equal(t, "", markdownOf(got))
}

func TestSegment_UnknownTypeStaysInProse(t *testing.T) {
	body := "a\n:::component-preview type=\"carousel\":::\nb\n"

	got := (&Segmenter{}).Segment(body)

	require.Len(t, got, 1)
	assert.Equal(t, body, got[0].Content)
}

func TestSegment_RoundTrip(t *testing.T) {
	body := "intro\n" +
		":::component-preview type=\"table\":::\n" +
		"| a | b |\n|:--|--:|\n| 1 | 2 |\n" +
		"middle\n" +
		":::component-preview type=\"tooltip\":::\n" +
		"tail"

	got := (&Segmenter{Registry: NewRegistry("table", "tooltip")}).Segment(body)

	require.Len(t, got, 5)
	assert.Equal(t, "intro\nmiddle\ntail", markdownOf(got))
	assert.Equal(t, "| a | b |\n|:--|--:|\n| 1 | 2 |\n", got[1].Table)
}

func TestParseDirective(t *testing.T) {
	tests := []struct {
		line string
		want string
		ok   bool
	}{
		{`:::component-preview type="color-palette":::`, "color-palette", true},
		{"  :::component-preview type=\"icon_grid\":::\r\n", "icon_grid", true},
		{`:::component-preview type="":::`, "", false},
		{`:::component-preview type="a b":::`, "", false},
		{`text :::component-preview type="button":::`, "", false},
		{`:::component-preview type='button':::`, "", false},
	}
	for _, tt := range tests {
		got, ok := ParseDirective(tt.line)
		assert.Equal(t, tt.ok, ok, tt.line)
		assert.Equal(t, tt.want, got, tt.line)
	}
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	require.NoError(t, r.Validate())
	assert.True(t, r.Has("color-palette"))
	assert.False(t, r.Has("carousel"))
	assert.Len(t, r.Types(), len(DefaultWidgetTypes))

	assert.Error(t, NewRegistry("ok", "not ok").Validate())
}
