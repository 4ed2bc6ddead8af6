package classify

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRules_IsChannel(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		title string
		group string
		want  bool
	}{
		{"La 1 TV", "", true},
		{"Canal Sur", "", true},
		{"Sky Sports News", "", true},
		{"Antena 3 FHD", "", true},
		{"Discovery Science", "", true},
		{"Music 24/7", "", true},
		{"Concierto en vivo", "", true},
		{"Die Hard (1988)", "Action", false},
		{"Hardcore Henry (2015)", "", false},
		{"Tvedt (2010)", "", false},
		{"Alien (1979)", "Noticias del mundo", true},
		{"Alien (1979)", "Mis Canales", true},
		{"Alien (1979)", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.title+"/"+tt.group, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.IsChannel(tt.title, tt.group))
		})
	}
}

func TestRules_SeriesTitle(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		title string
		want  string
	}{
		{"Show S01E02", "Show"},
		{"Show - S1E2", "Show"},
		{"Show.S01E02.", "Show"},
		{"La Casa de Papel Temporada 2 Episodio 5", "La Casa de Papel"},
		{"Narcos capitulo 7", "Narcos"},
		{"Serie T02E10", "Serie"},
		{"Serie temp02cap10", "Serie"},
		{"Mr. Robot Season 3", "Mr. Robot"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.True(t, rules.IsEpisode(tt.title))
			assert.Equal(t, tt.want, rules.SeriesTitle(tt.title))
		})
	}
}

func TestRules_EpisodeNumberOf(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		title string
		want  int
	}{
		{"Show S01E07", 7},
		{"Show s02e12", 12},
		{"Show episodio 4", 4},
		{"Show Episode 9", 0},
		{"Show chapter 3", 0},
		{"Show S01E99999999999999999999999", math.MaxInt},
		{"Show capitulo 11", 11},
		{"Show Temporada 1", 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.EpisodeNumberOf(tt.title))
		})
	}
}

func TestRules_ReleaseYear(t *testing.T) {
	rules := DefaultRules()

	year, ok := rules.ReleaseYear("Amelie [2001] HDRip")
	assert.True(t, ok)
	assert.Equal(t, "2001", year)

	// The leftmost year-like number wins.
	year, _ = rules.ReleaseYear("Blade Runner 2049 (2017)")
	assert.Equal(t, "2049", year)

	_, ok = rules.ReleaseYear("Movie 1850")
	assert.False(t, ok)

	_, ok = rules.ReleaseYear("Movie 20011")
	assert.False(t, ok)
}

func TestLoadRules(t *testing.T) {
	t.Run("empty document keeps built-in rules", func(t *testing.T) {
		rules, err := LoadRules(strings.NewReader(""))
		require.NoError(t, err)

		assert.Len(t, rules.ChannelTitles, len(DefaultRules().ChannelTitles))
		assert.True(t, rules.IsEpisode("Show S01E01"))
	})

	t.Run("sections present in the file replace built-in ones", func(t *testing.T) {
		doc := `
channel_titles:
  - "(?i)\\bradio\\b"
channel_groups: [Radio]
`
		rules, err := LoadRules(strings.NewReader(doc))
		require.NoError(t, err)

		assert.True(t, rules.IsChannel("Radio Clasica", ""))
		assert.False(t, rules.IsChannel("ESPN HD", ""))
		assert.True(t, rules.IsChannel("Anything", "RADIO STATIONS"))
		assert.True(t, rules.IsMovie("Alien (1979)"))
	})

	t.Run("custom classifier uses loaded tables", func(t *testing.T) {
		doc := `
episode_markers:
  - detect: "(?i)\\bep\\.? ?\\d+"
    strip: "(?i)[\\s-]*\\bep\\.? ?\\d+"
episode_number: "(?i)ep\\.? ?(\\d+)"
`
		rules, err := LoadRules(strings.NewReader(doc))
		require.NoError(t, err)

		assert.False(t, rules.IsEpisode("Show S01E01"))
		assert.True(t, rules.IsEpisode("Show Ep. 3"))
		assert.Equal(t, "Show", rules.SeriesTitle("Show Ep. 3"))
		assert.Equal(t, 3, rules.EpisodeNumberOf("Show Ep. 3"))
	})

	t.Run("invalid pattern is reported with its section", func(t *testing.T) {
		_, err := LoadRules(strings.NewReader("year: \"(19\"\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "year")
	})

	t.Run("unknown keys are rejected", func(t *testing.T) {
		_, err := LoadRules(strings.NewReader("channel_title: [x]\n"))
		assert.Error(t, err)
	})
}
