package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"<p>Hello</p>", "Hello"},
		{"<b>Bold</b> and <i>italic</i>", "Bold and italic"},
		{"No tags here", "No tags here"},
		{"  padded  ", "padded"},
		{"", ""},
		{`<a href="url">Link</a> text`, "Link text"},
		{"AI &amp; ML", "AI & ML"},
		{"&lt;tag&gt; 1 &lt; 2", "1 < 2"},
		{"say &quot;hi&quot;", `say "hi"`},
		{"GPT&#39;s Update  ", "GPT's Update"},
		{"a&nbsp;b", "a b"},
		{"&nbsp;edge&nbsp;", "edge"},
		{"<![CDATA[ignored]]>plain", "plain"},
		{"人工知能の<strong>発表</strong>", "人工知能の発表"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Text(tt.input), "Text(%q)", tt.input)
	}
}

func TestText_Idempotent(t *testing.T) {
	inputs := []string{
		"GPT&#39;s Update  ",
		"&amp;lt;b&amp;gt;bold&amp;lt;/b&amp;gt;",
		"&amp;amp;amp;",
		"1 < 2 and 3 > 2",
		"<div>  Multiple   spaces  </div>",
		"&lt;script&gt;alert(1)&lt;/script&gt;",
		"Tom &amp; Jerry&nbsp;&nbsp;",
		"x &unknown; y",
		"&" + strings.Repeat("amp;", 12) + "lt;",
		"&" + strings.Repeat("amp;", 40) + "lt;b&gt;deep&lt;/b&gt;",
	}
	for _, in := range inputs {
		once := Text(in)
		assert.Equal(t, once, Text(once), "Text not idempotent for %q", in)
	}
}

func TestText_DeepEscaping(t *testing.T) {
	assert.Equal(t, "<", Text("&"+strings.Repeat("amp;", 12)+"lt;"))
}

func TestText_ScenarioTitlesMatch(t *testing.T) {
	assert.Equal(t, Text("GPT's Update"), Text("GPT&#39;s Update  "))
}
