// Package m3u reads extended M3U playlists into flat entries.
//
// Parsing is best effort: malformed directives, orphan addresses and
// directives that are never followed by an address are dropped silently.
package m3u

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

const (
	directivePrefix = "#EXTINF:"

	// titleCutToken marks where attribute text starts leaking into the
	// display name in some feeds.
	titleCutToken = "tvg-name="
)

// addressSchemes are the URI prefixes that terminate a pending directive.
var addressSchemes = []string{"http", "rtmp"}

var (
	tvgLogoRegex    = regexp.MustCompile(`tvg-logo="([^"]*)"`)
	groupTitleRegex = regexp.MustCompile(`group-title="([^"]*)"`)
	tvgNameRegex    = regexp.MustCompile(`tvg-name="([^"]*)"`)
)

// Parse converts playlist text into entries in source order.
func Parse(text string) []Entry {
	var p parser
	for _, line := range strings.Split(text, "\n") {
		p.feed(line)
	}
	return p.entries
}

// ParseReader is the streaming form of Parse. The only errors it returns
// come from reading r.
func ParseReader(r io.Reader) ([]Entry, error) {
	var p parser
	scanner := bufio.NewScanner(r)
	// #EXTINF lines with embedded logos can be long
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		p.feed(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read playlist: %w", err)
	}

	return p.entries, nil
}

type parser struct {
	pending *Entry
	entries []Entry
}

func (p *parser) feed(raw string) {
	line := strings.TrimSpace(raw)

	switch {
	case strings.HasPrefix(line, directivePrefix):
		// A directive replaces whatever the previous one announced.
		p.pending = parseDirective(line)
	case isAddress(line):
		if p.pending != nil && p.pending.Title != "" {
			entry := *p.pending
			entry.URI = line
			p.entries = append(p.entries, entry)
		}
		p.pending = nil
	}
}

func parseDirective(line string) *Entry {
	// Everything after the first comma is the display field. Without a
	// comma the whole line is used.
	display := line[strings.Index(line, ",")+1:]
	if idx := strings.Index(display, titleCutToken); idx >= 0 {
		display = display[:idx]
	}

	return &Entry{
		Title:   strings.TrimSpace(display),
		Logo:    extractAttribute(tvgLogoRegex, line),
		Group:   extractAttribute(groupTitleRegex, line),
		TVGName: extractAttribute(tvgNameRegex, line),
	}
}

func extractAttribute(re *regexp.Regexp, line string) string {
	if matches := re.FindStringSubmatch(line); len(matches) > 1 {
		return matches[1]
	}
	return ""
}

func isAddress(line string) bool {
	for _, scheme := range addressSchemes {
		if strings.HasPrefix(line, scheme) {
			return true
		}
	}
	return false
}
