package document

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"yttranscript/internal/core/domain"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00"},
		{0.99, "00:00"},
		{65, "01:05"},
		{65.7, "01:05"},
		{599, "09:59"},
		{3599.9, "59:59"},
		{3600, "01:00:00"},
		{3661, "01:01:01"},
		{36000, "10:00:00"},
		{-3, "00:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTimestamp(tt.seconds), "FormatTimestamp(%v)", tt.seconds)
	}
}

func TestEscapeYAMLString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello world", `"hello world"`},
		{"empty", "", `""`},
		{"colon", "Go: the language", `"Go: the language"`},
		{"quote", `say "hi"`, `"say \"hi\""`},
		{"backslash", `C:\path`, `"C:\\path"`},
		{"backslash only", `a\b`, `"a\\b"`},
		{"hash", "#1 hit", `"#1 hit"`},
		{"japanese", "日本語のタイトル", `"日本語のタイトル"`},
		{"newline", "a\nb", `"a\nb"`},
		{"crlf", "a\r\nb", `"a\r\nb"`},
		{"backspace", "a\x08b", `"a\x08b"`},
		{"tab kept", "a\tb", "\"a\tb\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeYAMLString(tt.in))
		})
	}
}

func TestEscapeYAMLStringParses(t *testing.T) {
	inputs := []string{
		"Go: the language",
		`He said "yes": done`,
		`back\slash: and "quote"`,
		"[[Channel]]",
		"a & b | c > d",
		"plain",
		"a\n---\nb",
		"a\x08b",
		"a\tb\x08c",
		"line1\r\nline2 \"quoted\"",
		"del\x7fend",
	}
	for _, in := range inputs {
		var out map[string]string
		doc := "key: " + EscapeYAMLString(in) + "\n"
		require.NoError(t, yaml.Unmarshal([]byte(doc), &out), "doc %q", doc)
		assert.Equal(t, in, out["key"])
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Test Video", "Test Video"},
		{"reserved", `a<b>c:d"e/f\g|h?i*j#k^l[m]n`, "abcdefghijklmn"},
		{"control", "a\x00b\x1fc\x7fd", "abcd"},
		{"tab removed", "a\tb", "ab"},
		{"dots", "...hidden...", "hidden"},
		{"whitespace runs", "a   b \u3000 c", "a b c"},
		{"trim", "  padded  ", "padded"},
		{"dot after trim", "a . ", "a"},
		{"leading dot after space", " .abc", "abc"},
		{"only reserved", "???", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}

func TestSanitizeFilenameProperties(t *testing.T) {
	inputs := []string{
		"",
		"Test Video",
		strings.Repeat("x", 500),
		strings.Repeat("あ", 250),
		strings.Repeat("a ", 150) + "...",
		strings.Repeat("b", 199) + " .c",
		" . . . ",
		"Title: Part [1] / 2 | #tag ^ * ? <x>",
		"\x01\x02 weird \x7f name \n\n",
		".. leading . dots ..",
	}
	for _, in := range inputs {
		once := SanitizeFilename(in)
		assert.Equal(t, once, SanitizeFilename(once), "not idempotent for %q", in)
		assert.LessOrEqual(t, utf8.RuneCountInString(once), 200)
		assert.False(t, strings.ContainsAny(once, `<>:"/\|?*#^[]`), "reserved char left in %q", once)
		for _, r := range once {
			assert.False(t, r < 0x20 || r == 0x7f, "control char left in %q", once)
		}
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "Test Video.md", Filename("Test Video"))
	assert.Equal(t, "Untitled.md", Filename("???"))
}

func TestTranscriptText(t *testing.T) {
	got := TranscriptText([]domain.Snippet{
		{Text: "Hello", Start: 0},
		{Text: "World", Start: 65},
		{Text: "Later", Start: 3661.5},
	})
	assert.Equal(t, "[00:00] Hello\n[01:05] World\n[01:01:01] Later", got)
	assert.Equal(t, "", TranscriptText(nil))
}

func testInput() Input {
	return Input{
		VideoID: "abcdefghijk",
		Meta: domain.VideoMeta{
			Title:         "Test Video",
			ChannelName:   "Chan",
			Description:   "d",
			PublishedDate: "2024-01-01",
		},
		Transcript: domain.Transcript{
			LanguageCode: "ja",
			Snippets: []domain.Snippet{
				{Text: "Hello", Start: 0},
				{Text: "World", Start: 65},
			},
		},
		Now: time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC),
	}
}

func TestRenderWithoutSummary(t *testing.T) {
	md, filename := Render(testInput())

	want := `---
title: "Test Video"
source: "https://www.youtube.com/watch?v=abcdefghijk"
author:
  - "[[Chan]]"
published: 2024-01-01
created: 2025-03-04
description: "d"
tags:
  - "clippings"
  - "youtube-transcript"
---

## Transcript

[00:00] Hello
[01:05] World
`
	assert.Equal(t, want, md)
	assert.Equal(t, "Test Video.md", filename)
	assert.NotContains(t, md, "## Summary")
}

func TestRenderWithSummary(t *testing.T) {
	in := testInput()
	in.Summary = "- point one\n- point two"
	md, _ := Render(in)

	assert.Contains(t, md, "---\n\n## Summary\n\n- point one\n- point two\n\n## Transcript\n\n[00:00] Hello\n")
	assert.Less(t, strings.Index(md, "## Summary"), strings.Index(md, "## Transcript"))
}

func TestRenderOmitsEmptyPublished(t *testing.T) {
	in := testInput()
	in.Meta.PublishedDate = ""
	md, _ := Render(in)
	assert.NotContains(t, md, "published:")
}

func TestFrontmatterParsesAsYAML(t *testing.T) {
	in := testInput()
	in.Meta.Title = `Go: "generics" & [more] #1`
	in.Meta.ChannelName = `Chan "quoted"`
	in.Meta.Description = strings.Repeat("説明", 150)

	fm := Frontmatter(in)
	body := strings.TrimSuffix(strings.TrimPrefix(fm, "---\n"), "---")

	var parsed struct {
		Title       string    `yaml:"title"`
		Source      string    `yaml:"source"`
		Author      []string  `yaml:"author"`
		Published   time.Time `yaml:"published"`
		Created     time.Time `yaml:"created"`
		Description string    `yaml:"description"`
		Tags        []string  `yaml:"tags"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(body), &parsed))

	assert.Equal(t, in.Meta.Title, parsed.Title)
	assert.Equal(t, "https://www.youtube.com/watch?v=abcdefghijk", parsed.Source)
	assert.Equal(t, []string{`[[Chan "quoted"]]`}, parsed.Author)
	assert.Equal(t, 2024, parsed.Published.Year())
	assert.Equal(t, "2025-03-04", parsed.Created.Format("2006-01-02"))
	assert.Equal(t, 203, utf8.RuneCountInString(parsed.Description))
	assert.True(t, strings.HasSuffix(parsed.Description, "..."))
	assert.Equal(t, []string{"clippings", "youtube-transcript"}, parsed.Tags)
}

func TestFrontmatterKeepsMultilineDescriptionInside(t *testing.T) {
	in := testInput()
	in.Meta.Description = "intro\n---\nmore\x08"

	fm := Frontmatter(in)
	assert.Equal(t, 1, strings.Count(fm, "\n---"))
	assert.True(t, strings.HasSuffix(fm, "\n---"))
	assert.Contains(t, fm, `description: "intro\n---\nmore\x08"`)

	body := strings.TrimSuffix(strings.TrimPrefix(fm, "---\n"), "---")
	var parsed struct {
		Description string `yaml:"description"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(body), &parsed))
	assert.Equal(t, in.Meta.Description, parsed.Description)
}
