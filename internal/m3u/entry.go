package m3u

// Entry is a single playable item announced by an #EXTINF directive.
// Optional attributes are empty when the directive did not carry them.
type Entry struct {
	Title   string
	URI     string
	Logo    string
	Group   string
	TVGName string
}
