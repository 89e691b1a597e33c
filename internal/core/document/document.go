// Package document renders a video transcript note as Markdown with YAML frontmatter.
package document

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"yttranscript/internal/core/domain"
)

const (
	maxDescriptionRunes = 200
	maxFilenameRunes    = 200
	untitledFilename    = "Untitled"
)

// Tags attached to every note.
var Tags = []string{"clippings", "youtube-transcript"}

var (
	// yamlSpecialRe matches characters that force backslash escaping inside the quoted scalar.
	yamlSpecialRe = regexp.MustCompile("[:\"'#\\[\\]{}|>&*!%@`\\\\\\n]")

	reservedRe   = regexp.MustCompile(`[<>:"/\\|?*#^\[\]]`)
	controlRe    = regexp.MustCompile(`[\x00-\x1f\x7f]`)
	whitespaceRe = regexp.MustCompile(`[\s\p{Z}\x{feff}]+`)
)

// Input is everything Render needs. Now supplies the created date.
type Input struct {
	VideoID    domain.VideoID
	Meta       domain.VideoMeta
	Transcript domain.Transcript
	Summary    string // empty means no summary section
	Now        time.Time
}

// FormatTimestamp renders seconds as MM:SS, or HH:MM:SS from one hour on.
func FormatTimestamp(seconds float64) string {
	total := int(math.Floor(seconds))
	if total < 0 {
		total = 0
	}
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// EscapeYAMLString returns s as a double-quoted YAML scalar. Line breaks and
// other control characters are written as escape sequences so the value stays
// on one line.
func EscapeYAMLString(s string) string {
	if !yamlSpecialRe.MatchString(s) && !strings.ContainsFunc(s, isYAMLControl) {
		return `"` + s + `"`
	}
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == '"':
			b.WriteString(`\"`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case isYAMLControl(r):
			fmt.Fprintf(&b, `\x%02X`, r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// isYAMLControl reports runes YAML does not allow unescaped. Tab is allowed.
func isYAMLControl(r rune) bool {
	return (r < 0x20 && r != '\t') || (r >= 0x7f && r <= 0x9f && r != 0x85)
}

// SanitizeFilename strips characters that are unsafe in file names on common
// filesystems and caps the result at 200 runes. The result may be empty.
func SanitizeFilename(name string) string {
	name = reservedRe.ReplaceAllString(name, "")
	name = controlRe.ReplaceAllString(name, "")
	name = whitespaceRe.ReplaceAllString(name, " ")
	name = trimDotsAndSpace(name)
	if utf8.RuneCountInString(name) > maxFilenameRunes {
		name = string([]rune(name)[:maxFilenameRunes])
		name = trimDotsAndSpace(name)
	}
	return name
}

func trimDotsAndSpace(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return r == '.' || unicode.IsSpace(r)
	})
}

// Filename returns the note file name for a video title.
func Filename(title string) string {
	name := SanitizeFilename(title)
	if name == "" {
		name = untitledFilename
	}
	return name + ".md"
}

// TranscriptText renders one "[timestamp] text" line per snippet, in order.
func TranscriptText(snippets []domain.Snippet) string {
	lines := make([]string, 0, len(snippets))
	for _, s := range snippets {
		lines = append(lines, "["+FormatTimestamp(s.Start)+"] "+s.Text)
	}
	return strings.Join(lines, "\n")
}

func shortDescription(desc string) string {
	if utf8.RuneCountInString(desc) <= maxDescriptionRunes {
		return desc
	}
	return string([]rune(desc)[:maxDescriptionRunes]) + "..."
}

// Frontmatter renders the YAML block including both "---" delimiters.
func Frontmatter(in Input) string {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: %s\n", EscapeYAMLString(in.Meta.Title))
	fmt.Fprintf(&b, "source: %s\n", EscapeYAMLString(in.VideoID.WatchURL()))
	b.WriteString("author:\n")
	fmt.Fprintf(&b, "  - %s\n", EscapeYAMLString("[["+in.Meta.ChannelName+"]]"))
	if in.Meta.PublishedDate != "" {
		fmt.Fprintf(&b, "published: %s\n", in.Meta.PublishedDate)
	}
	fmt.Fprintf(&b, "created: %s\n", in.Now.UTC().Format("2006-01-02"))
	fmt.Fprintf(&b, "description: %s\n", EscapeYAMLString(shortDescription(in.Meta.Description)))
	b.WriteString("tags:\n")
	for _, tag := range Tags {
		fmt.Fprintf(&b, "  - %s\n", EscapeYAMLString(tag))
	}
	b.WriteString("---")
	return b.String()
}

// Render assembles the full note and its file name.
func Render(in Input) (markdown, filename string) {
	var b strings.Builder
	b.WriteString(Frontmatter(in))
	b.WriteString("\n")
	if in.Summary != "" {
		b.WriteString("\n## Summary\n\n")
		b.WriteString(in.Summary)
		b.WriteString("\n")
	}
	b.WriteString("\n## Transcript\n\n")
	b.WriteString(TranscriptText(in.Transcript.Snippets))
	b.WriteString("\n")
	return b.String(), Filename(in.Meta.Title)
}
