// Package markdown converts the site's Markdown dialect to HTML.
//
// Convert is the only implementation of the conversion: post bodies are
// rendered with it when they are saved, and the editor's live preview calls
// it through the admin preview endpoint, so both always agree.
package markdown

import (
	"context"
	"html"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

var (
	reHeading     = regexp.MustCompile(`^(#{1,4})\s+(.+)$`)
	reOrderedItem = regexp.MustCompile(`^\s*\d+\.\s+(.+)$`)
	reBulletItem  = regexp.MustCompile(`^\s*[-*+]\s+(.+)$`)
	reImageLine   = regexp.MustCompile(`^!\[([^\]]*)\]\(([^)\s]+)\)$`)
	reCaptionLine = regexp.MustCompile(`^\*([^*]+)\*$`)
	reFenceLang   = regexp.MustCompile(`^[A-Za-z0-9_+#.-]+$`)

	reImg              = regexp.MustCompile(`!\[([^\]]*)\]\(([^)\s]+)\)`)
	reLink             = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)
	reInlineCode       = regexp.MustCompile("`([^`]+)`")
	reBoldItalic       = regexp.MustCompile(`\*\*\*(.+?)\*\*\*`)
	reBold             = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBoldUnderscore   = regexp.MustCompile(`(^|[^\p{L}\p{N}_])__([^_].*?)__($|[^\p{L}\p{N}_])`)
	reItalic           = regexp.MustCompile(`(^|[^*])\*([^*\s](?:[^*]*[^*\s])?)\*($|[^*])`)
	reItalicUnderscore = regexp.MustCompile(`(^|[^\p{L}\p{N}_])_([^_\s](?:[^_]*[^_\s])?)_($|[^\p{L}\p{N}_])`)
	reStrike           = regexp.MustCompile(`~~(.+?)~~`)
)

const fence = "```"

// Markdown returns a templ.Component that renders md as HTML.
func Markdown(md string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, Convert(md))
		return err
	})
}

// Convert renders md as an HTML fragment. It never fails: malformed markup
// degrades to literal text. Empty or whitespace-only input yields "".
func Convert(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	md = strings.ReplaceAll(md, "\r\n", "\n")
	md = strings.ReplaceAll(md, "\r", "\n")
	// NUL delimits protected spans in FormatInline.
	md = strings.ReplaceAll(md, "\x00", "\uFFFD")

	lines := strings.Split(md, "\n")
	var b blockWriter
	for i := 0; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], " \t")
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, fence) {
			if body, ok := strings.CutSuffix(trimmed[len(fence):], fence); ok && len(trimmed) > 2*len(fence) {
				b.code("", []string{body})
				continue
			}
			if end := closingFence(lines, i+1); end >= 0 {
				b.code(strings.TrimSpace(trimmed[len(fence):]), lines[i+1:end])
				i = end
				continue
			}
		}

		if trimmed == "" {
			b.flush()
			continue
		}
		if m := reHeading.FindStringSubmatch(line); m != nil {
			b.heading(len(m[1]), m[2])
			continue
		}
		if trimmed == "---" || trimmed == "***" {
			b.block("<hr>")
			continue
		}
		if m := reImageLine.FindStringSubmatch(trimmed); m != nil && i+1 < len(lines) && SafeURL(m[2]) != "" {
			if c := reCaptionLine.FindStringSubmatch(strings.TrimSpace(lines[i+1])); c != nil {
				b.figure(m[1], m[2], c[1])
				i++
				continue
			}
		}
		if strings.HasPrefix(line, "> ") {
			b.add(kindQuote, false, line[2:])
			continue
		}
		if m := reOrderedItem.FindStringSubmatch(line); m != nil {
			b.add(kindList, true, m[1])
			continue
		}
		if m := reBulletItem.FindStringSubmatch(line); m != nil {
			b.add(kindList, false, m[1])
			continue
		}
		b.add(kindPara, false, trimmed)
	}
	b.flush()
	return strings.Join(b.out, "\n")
}

// closingFence returns the index of the first bare ``` line at or after
// start, or -1 when the fence is never closed.
func closingFence(lines []string, start int) int {
	for j := start; j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) == fence {
			return j
		}
	}
	return -1
}

type blockKind int

const (
	kindNone blockKind = iota
	kindPara
	kindQuote
	kindList
)

// blockWriter accumulates the lines of the open paragraph, blockquote or
// list and emits finished blocks. Emitting any block closes the open one,
// so block elements never end up inside a paragraph.
type blockWriter struct {
	out     []string
	kind    blockKind
	ordered bool
	lines   []string
}

func (b *blockWriter) add(kind blockKind, ordered bool, text string) {
	if b.kind != kind {
		b.flush()
		b.kind = kind
		// A run's list type is fixed by its first item.
		b.ordered = ordered
	}
	b.lines = append(b.lines, FormatInline(strings.TrimSpace(text)))
}

func (b *blockWriter) flush() {
	if b.kind == kindNone {
		return
	}
	switch b.kind {
	case kindPara:
		if body := strings.Join(b.lines, "<br>"); strings.TrimSpace(body) != "" {
			b.out = append(b.out, "<p>"+body+"</p>")
		}
	case kindQuote:
		b.out = append(b.out, "<blockquote>"+strings.Join(b.lines, "<br>")+"</blockquote>")
	case kindList:
		tag := "ul"
		if b.ordered {
			tag = "ol"
		}
		var sb strings.Builder
		sb.WriteString("<" + tag + ">")
		for _, item := range b.lines {
			sb.WriteString("<li>" + item + "</li>")
		}
		sb.WriteString("</" + tag + ">")
		b.out = append(b.out, sb.String())
	}
	b.kind = kindNone
	b.ordered = false
	b.lines = nil
}

func (b *blockWriter) block(markup string) {
	b.flush()
	b.out = append(b.out, markup)
}

func (b *blockWriter) heading(level int, text string) {
	n := strconv.Itoa(level)
	b.block("<h" + n + ">" + FormatInline(strings.TrimSpace(text)) + "</h" + n + ">")
}

func (b *blockWriter) code(lang string, body []string) {
	open := "<pre><code>"
	if lang != "" && reFenceLang.MatchString(lang) {
		open = `<pre><code class="language-` + html.EscapeString(lang) + `">`
	}
	b.block(open + html.EscapeString(strings.Join(body, "\n")) + "</code></pre>")
}

func (b *blockWriter) figure(alt, src, caption string) {
	b.block(`<figure><img src="` + SafeURL(src) + `" alt="` + html.EscapeString(alt) + `"><figcaption>` +
		FormatInline(strings.TrimSpace(caption)) + `</figcaption></figure>`)
}

// FormatInline applies inline formatting to a single line of text. Code
// spans, images and link markup are swapped for placeholders before the
// emphasis passes run, so emphasis markers inside them (underscores in URLs,
// asterisks in code) are never rewritten.
func FormatInline(s string) string {
	var spans []string
	protect := func(markup string) string {
		spans = append(spans, markup)
		return placeholder(len(spans) - 1)
	}

	out := html.EscapeString(s)
	out = reInlineCode.ReplaceAllStringFunc(out, func(m string) string {
		return protect("<code>" + m[1:len(m)-1] + "</code>")
	})
	out = reImg.ReplaceAllStringFunc(out, func(m string) string {
		match := reImg.FindStringSubmatch(m)
		src := SafeURL(match[2])
		if src == "" {
			return match[1]
		}
		return protect(`<img src="` + src + `" alt="` + match[1] + `">`)
	})
	out = reLink.ReplaceAllStringFunc(out, func(m string) string {
		match := reLink.FindStringSubmatch(m)
		href := SafeURL(match[2])
		if href == "" {
			return match[1]
		}
		return protect(`<a href="` + href + `" target="_blank" rel="noopener noreferrer">` + emphasize(match[1]) + `</a>`)
	})

	out = emphasize(out)

	// Later spans may embed earlier placeholders (an image inside a link).
	for i := len(spans) - 1; i >= 0; i-- {
		out = strings.Replace(out, placeholder(i), spans[i], 1)
	}
	return out
}

// emphasize runs the emphasis passes, longest marker first. Single markers
// and underscore markers carry a boundary character on each side, which the
// match consumes, so those passes repeat until adjacent spans are all done.
func emphasize(s string) string {
	s = reBoldItalic.ReplaceAllString(s, "<strong><em>$1</em></strong>")
	s = reBold.ReplaceAllString(s, "<strong>$1</strong>")
	s = replaceBounded(reBoldUnderscore, s, "$1<strong>$2</strong>$3")
	s = replaceBounded(reItalic, s, "$1<em>$2</em>$3")
	s = replaceBounded(reItalicUnderscore, s, "$1<em>$2</em>$3")
	return reStrike.ReplaceAllString(s, "<del>$1</del>")
}

// replaceBounded applies re until the output stops changing. Every pass
// removes two markers, so the loop ends.
func replaceBounded(re *regexp.Regexp, s, repl string) string {
	for {
		next := re.ReplaceAllString(s, repl)
		if next == s {
			return s
		}
		s = next
	}
}

func placeholder(i int) string {
	return "\x00" + strconv.Itoa(i) + "\x00"
}

// SafeURL validates and sanitizes a URL for use in HTML attributes. It
// returns "" for anything other than relative paths, fragments and
// http, https, mailto or tel URLs.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		if strings.HasPrefix(val, "//") {
			return ""
		}
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
