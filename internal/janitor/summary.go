package janitor

import (
	"fmt"
	"strings"

	"github.com/sydlexius/janitor/internal/cleaner"
	"github.com/sydlexius/janitor/internal/video"
)

// NothingToDo is reported when a run cleaned no videos.
const NothingToDo = "nothing to do"

var nouns = map[video.Category][2]string{
	video.Movies:      {"movie", "movies"},
	video.MusicVideos: {"music video", "music videos"},
	video.Episodes:    {"episode", "episodes"},
}

// Summarize renders sum as a comma separated list in category order, for
// example "1 movie, 2 episodes". An empty summary renders as "".
func Summarize(sum cleaner.Summary) string {
	var parts []string
	for _, c := range video.Categories {
		n := sum[c]
		if n <= 0 {
			continue
		}
		noun := nouns[c][1]
		if n == 1 {
			noun = nouns[c][0]
		}
		parts = append(parts, fmt.Sprintf("%d %s", n, noun))
	}
	return strings.Join(parts, ", ")
}
