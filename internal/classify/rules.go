package classify

import (
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Marker pairs the pattern that recognizes a title marker with the pattern
// that removes it (including any separator glued in front of it).
type Marker struct {
	Detect *regexp.Regexp
	Strip  *regexp.Regexp
}

// Rules are the heuristic tables driving classification. They are plain
// data so they can be tested and swapped without touching control flow.
type Rules struct {
	ChannelTitles      []*regexp.Regexp
	ChannelGroups      []string
	EpisodeMarkers     []Marker
	MovieMarkers       []Marker
	TrailingSeparators *regexp.Regexp
	Year               *regexp.Regexp
	EpisodeNumber      *regexp.Regexp
}

// markerSpec and ruleFile are the serialized form of Rules.
type markerSpec struct {
	Detect string `yaml:"detect"`
	Strip  string `yaml:"strip"`
}

type ruleFile struct {
	ChannelTitles      []string     `yaml:"channel_titles"`
	ChannelGroups      []string     `yaml:"channel_groups"`
	EpisodeMarkers     []markerSpec `yaml:"episode_markers"`
	MovieMarkers       []markerSpec `yaml:"movie_markers"`
	TrailingSeparators string       `yaml:"trailing_separators"`
	Year               string       `yaml:"year"`
	EpisodeNumber      string       `yaml:"episode_number"`
}

func defaultRuleFile() ruleFile {
	return ruleFile{
		ChannelTitles: []string{
			`(?i)\b(tv|television|canal|channel)\b`,
			`(?i)\b(news|noticias|deportes|sports)\b`,
			`(?i)\b(hd|sd|fhd|uhd|4k)\b`,
			`(?i)\b(espn|fox|hbo|cnn|bein|discovery|national|history)\b`,
			`24/7`,
			`(?i)\b(en vivo|live)\b`,
		},
		ChannelGroups: []string{
			"tv", "television", "canales", "channels",
			"deportes", "sports", "news", "noticias",
		},
		EpisodeMarkers: []markerSpec{
			{Detect: `(?i)s\d{1,2}e\d{1,2}`, Strip: `(?i)[\s-]*s\d{1,2}e\d{1,2}`},
			{Detect: `(?i)(temporada|season) \d+`, Strip: `(?i)[\s-]*(temporada|season) \d+`},
			{Detect: `(?i)(episodio|episode) \d+`, Strip: `(?i)[\s-]*(episodio|episode) \d+`},
			{Detect: `(?i)(capitulo|chapter) \d+`, Strip: `(?i)[\s-]*(capitulo|chapter) \d+`},
			{Detect: `(?i)\b(t|temp)\d{1,2}(cap|e)\d{1,2}\b`, Strip: `(?i)[\s-]*(t|temp)\d{1,2}(cap|e)\d{1,2}`},
		},
		MovieMarkers: []markerSpec{
			{Detect: `\(\d{4}\)`, Strip: `\(\d{4}\)`},
			{Detect: `\[\d{4}\]`, Strip: `\[\d{4}\]`},
			{Detect: `\d{4}`, Strip: `\b\d{4}\b`},
			{Detect: `(?i)\b(DVDRip|BRRip|BluRay|WEBRip|HDRip)\b`, Strip: `(?i)\b(DVDRip|BRRip|BluRay|WEBRip|HDRip)\b`},
		},
		TrailingSeparators: `[-_.]+$`,
		Year:               `\b(19|20)\d{2}\b`,
		EpisodeNumber:      `(?i)e(\d+)|episodio (\d+)|capitulo (\d+)`,
	}
}

// DefaultRules returns the built-in heuristic tables.
func DefaultRules() *Rules {
	rules, err := defaultRuleFile().compile()
	if err != nil {
		panic(fmt.Sprintf("classify: invalid built-in rules: %v", err))
	}
	return rules
}

// LoadRules reads a YAML rule file. Sections absent from the file keep
// their built-in values; unknown keys are rejected.
func LoadRules(r io.Reader) (*Rules, error) {
	file := defaultRuleFile()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode rules: %w", err)
	}

	rules, err := file.compile()
	if err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	return rules, nil
}

func (f ruleFile) compile() (*Rules, error) {
	var errs []error
	compile := func(section, expr string) *regexp.Regexp {
		re, err := regexp.Compile(expr)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", section, err))
		}
		return re
	}
	markers := func(section string, specs []markerSpec) []Marker {
		result := make([]Marker, 0, len(specs))
		for i, m := range specs {
			name := fmt.Sprintf("%s[%d]", section, i)
			result = append(result, Marker{
				Detect: compile(name+".detect", m.Detect),
				Strip:  compile(name+".strip", m.Strip),
			})
		}
		return result
	}

	rules := &Rules{
		EpisodeMarkers:     markers("episode_markers", f.EpisodeMarkers),
		MovieMarkers:       markers("movie_markers", f.MovieMarkers),
		TrailingSeparators: compile("trailing_separators", f.TrailingSeparators),
		Year:               compile("year", f.Year),
		EpisodeNumber:      compile("episode_number", f.EpisodeNumber),
	}
	for i, expr := range f.ChannelTitles {
		rules.ChannelTitles = append(rules.ChannelTitles, compile(fmt.Sprintf("channel_titles[%d]", i), expr))
	}
	for _, kw := range f.ChannelGroups {
		rules.ChannelGroups = append(rules.ChannelGroups, strings.ToLower(kw))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return rules, nil
}

// IsChannel reports whether the title or group label looks like a live
// broadcast.
func (r *Rules) IsChannel(title, group string) bool {
	for _, re := range r.ChannelTitles {
		if re.MatchString(title) {
			return true
		}
	}

	if group == "" {
		return false
	}
	lowerGroup := strings.ToLower(group)
	for _, kw := range r.ChannelGroups {
		if strings.Contains(lowerGroup, kw) {
			return true
		}
	}
	return false
}

// IsEpisode reports whether the title carries season/episode numbering.
func (r *Rules) IsEpisode(title string) bool {
	return matchesAny(r.EpisodeMarkers, title)
}

// IsMovie reports whether the title carries a year or a rip tag.
func (r *Rules) IsMovie(title string) bool {
	return matchesAny(r.MovieMarkers, title)
}

// SeriesTitle strips episode markers from an episode title.
func (r *Rules) SeriesTitle(title string) string {
	return r.strip(r.EpisodeMarkers, title)
}

// MovieTitle strips year and quality markers from a release title.
func (r *Rules) MovieTitle(title string) string {
	return r.strip(r.MovieMarkers, title)
}

// ReleaseYear scans the title for a 19xx/20xx year.
func (r *Rules) ReleaseYear(title string) (string, bool) {
	year := r.Year.FindString(title)
	return year, year != ""
}

// EpisodeNumberOf extracts the episode number used for ordering. Titles
// without one yield 0; numbers too large for an int saturate.
func (r *Rules) EpisodeNumberOf(title string) int {
	matches := r.EpisodeNumber.FindStringSubmatch(title)
	if matches == nil {
		return 0
	}
	for _, group := range matches[1:] {
		if group == "" {
			continue
		}
		n, err := strconv.Atoi(group)
		if errors.Is(err, strconv.ErrRange) {
			return math.MaxInt
		}
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

func (r *Rules) strip(markers []Marker, title string) string {
	for _, m := range markers {
		title = replaceFirst(m.Strip, title)
	}
	title = replaceFirst(r.TrailingSeparators, title)
	return strings.TrimSpace(title)
}

func matchesAny(markers []Marker, title string) bool {
	for _, m := range markers {
		if m.Detect.MatchString(title) {
			return true
		}
	}
	return false
}

// replaceFirst removes the leftmost match of re from s.
func replaceFirst(re *regexp.Regexp, s string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + s[loc[1]:]
}
