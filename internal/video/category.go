// Package video selects expired videos from the Kodi library.
package video

import (
	"slices"

	"github.com/sydlexius/janitor/internal/settings"
)

// Category is one of the Kodi video library sections.
type Category int

const (
	Movies Category = iota
	MusicVideos
	Episodes
)

// Categories lists every category in the order a run visits them.
var Categories = []Category{Movies, MusicVideos, Episodes}

type categoryInfo struct {
	name   string
	method string
	title  string
	fields []string
}

var categoryTable = [...]categoryInfo{
	Movies: {
		name:   "movies",
		method: "VideoLibrary.GetMovies",
		title:  "title",
		fields: []string{
			"title", "plot", "plotoutline", "tagline", "votes", "rating", "time", "writers",
			"playcount", "lastplayed", "inprogress", "genre", "country", "year", "director",
			"actor", "mpaarating", "top250", "studio", "hastrailer", "filename", "path", "set",
			"tag", "dateadded", "videoresolution", "audiochannels", "videocodec", "audiocodec",
			"audiolanguage", "subtitlelanguage", "videoaspect", "playlist",
		},
	},
	MusicVideos: {
		name:   "musicvideos",
		method: "VideoLibrary.GetMusicVideos",
		title:  "artist",
		fields: []string{
			"title", "genre", "album", "year", "artist", "filename", "path", "playcount",
			"lastplayed", "time", "director", "studio", "plot", "dateadded",
			"videoresolution", "audiochannels", "videocodec", "audiocodec", "audiolanguage",
			"subtitlelanguage", "videoaspect", "playlist",
		},
	},
	Episodes: {
		name:   "episodes",
		method: "VideoLibrary.GetEpisodes",
		title:  "showtitle",
		fields: []string{
			"title", "tvshow", "plot", "votes", "rating", "time", "writers", "airdate",
			"playcount", "lastplayed", "inprogress", "genre", "year", "director", "actor",
			"episode", "season", "filename", "path", "studio", "mpaarating", "dateadded",
			"videoresolution", "audiochannels", "videocodec", "audiocodec", "audiolanguage",
			"subtitlelanguage", "videoaspect", "playlist",
		},
	},
}

// String returns the category's result key, e.g. "movies".
func (c Category) String() string { return categoryTable[c].name }

// Method returns the JSON-RPC method that lists the category.
func (c Category) Method() string { return categoryTable[c].method }

// TitleProperty names the property used as the display title.
func (c Category) TitleProperty() string { return categoryTable[c].title }

// Properties returns the minimal projection requested per record.
func (c Category) Properties() []string {
	return []string{"file", categoryTable[c].title}
}

// Supports reports whether Kodi accepts field in a filter for this category.
func (c Category) Supports(field string) bool {
	return slices.Contains(categoryTable[c].fields, field)
}

// Enabled reports whether the user wants this category cleaned.
func (c Category) Enabled(s settings.Settings) bool {
	switch c {
	case Movies:
		return s.CleanMovies
	case MusicVideos:
		return s.CleanMusicVideos
	case Episodes:
		return s.CleanTVShows
	}
	return false
}

// ParseCategory maps a result key back to its Category.
func ParseCategory(name string) (Category, bool) {
	for _, c := range Categories {
		if c.String() == name {
			return c, true
		}
	}
	return 0, false
}
