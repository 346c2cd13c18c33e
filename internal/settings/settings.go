// Package settings stores the user-facing cleaning preferences in the
// sqlite settings table and hands out typed snapshots of them.
package settings

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// CleaningType selects what happens to an expired video.
type CleaningType string

const (
	Delete CleaningType = "delete"
	Move   CleaningType = "move"
)

// Default actions for a bare invocation of the binary.
const (
	ActionClean = "clean"
	ActionLog   = "log"
)

// Setting keys.
const (
	KeyDefaultAction         = "default_action"
	KeyCleanWhenIdle         = "clean_when_idle"
	KeyCleanWhenLowDiskSpace = "clean_when_low_disk_space"
	KeyDiskSpaceThreshold    = "disk_space_threshold"
	KeyDiskSpaceCheckPath    = "disk_space_check_path"
	KeyCleanMovies           = "clean_movies"
	KeyCleanTVShows          = "clean_tv_shows"
	KeyCleanMusicVideos      = "clean_music_videos"
	KeyEnableExpiration      = "enable_expiration"
	KeyExpireAfter           = "expire_after"
	KeyCleanWhenLowRated     = "clean_when_low_rated"
	KeyMinimumRating         = "minimum_rating"
	KeyIgnoreNoRating        = "ignore_no_rating"
	KeyNotInProgress         = "not_in_progress"
	KeyExclusionEnabled      = "exclusion_enabled"
	KeyExclusion1            = "exclusion1"
	KeyExclusion2            = "exclusion2"
	KeyExclusion3            = "exclusion3"
	KeyExclusion4            = "exclusion4"
	KeyExclusion5            = "exclusion5"
	KeyCleaningType          = "cleaning_type"
	KeyHoldingFolder         = "holding_folder"
	KeyCreateSubdirs         = "create_subdirs"
	KeyCleanRelated          = "clean_related"
	KeyDeleteFolders         = "delete_folders"
	KeyIgnoreExtensions      = "ignore_extensions"
	KeyKeepHardLinked        = "keep_hard_linked"
	KeyCleanLibrary          = "clean_library"
	KeyNotificationsEnabled  = "notifications_enabled"
	KeyNotifyWhenIdle        = "notify_when_idle"
	KeyDebuggingEnabled      = "debugging_enabled"
)

// ExclusionKeys lists the five path exclusion keys in order.
var ExclusionKeys = []string{KeyExclusion1, KeyExclusion2, KeyExclusion3, KeyExclusion4, KeyExclusion5}

var (
	// ErrUnknownKey is returned when writing a key that is not a known setting.
	ErrUnknownKey = errors.New("unknown setting")
	// ErrInvalidValue is returned when a value does not parse as the setting's type.
	ErrInvalidValue = errors.New("invalid setting value")
)

type kind int

const (
	kindBool kind = iota
	kindInt
	kindFloat
	kindString
	kindEnum
)

type definition struct {
	key     string
	kind    kind
	def     string
	allowed []string
}

var definitions = []definition{
	{key: KeyDefaultAction, kind: kindEnum, def: ActionClean, allowed: []string{ActionClean, ActionLog}},
	{key: KeyCleanWhenIdle, kind: kindBool, def: "true"},
	{key: KeyCleanWhenLowDiskSpace, kind: kindBool, def: "false"},
	{key: KeyDiskSpaceThreshold, kind: kindInt, def: "10"},
	{key: KeyDiskSpaceCheckPath, kind: kindString, def: "/"},
	{key: KeyCleanMovies, kind: kindBool, def: "true"},
	{key: KeyCleanTVShows, kind: kindBool, def: "true"},
	{key: KeyCleanMusicVideos, kind: kindBool, def: "false"},
	{key: KeyEnableExpiration, kind: kindBool, def: "true"},
	{key: KeyExpireAfter, kind: kindFloat, def: "90"},
	{key: KeyCleanWhenLowRated, kind: kindBool, def: "false"},
	{key: KeyMinimumRating, kind: kindFloat, def: "4"},
	{key: KeyIgnoreNoRating, kind: kindBool, def: "true"},
	{key: KeyNotInProgress, kind: kindBool, def: "true"},
	{key: KeyExclusionEnabled, kind: kindBool, def: "false"},
	{key: KeyExclusion1, kind: kindString},
	{key: KeyExclusion2, kind: kindString},
	{key: KeyExclusion3, kind: kindString},
	{key: KeyExclusion4, kind: kindString},
	{key: KeyExclusion5, kind: kindString},
	{key: KeyCleaningType, kind: kindEnum, def: string(Delete), allowed: []string{string(Delete), string(Move)}},
	{key: KeyHoldingFolder, kind: kindString},
	{key: KeyCreateSubdirs, kind: kindBool, def: "true"},
	{key: KeyCleanRelated, kind: kindBool, def: "false"},
	{key: KeyDeleteFolders, kind: kindBool, def: "false"},
	{key: KeyIgnoreExtensions, kind: kindString, def: ".txt, .nfo, .tbn, .jpg, .png, .db"},
	{key: KeyKeepHardLinked, kind: kindBool, def: "false"},
	{key: KeyCleanLibrary, kind: kindBool, def: "false"},
	{key: KeyNotificationsEnabled, kind: kindBool, def: "true"},
	{key: KeyNotifyWhenIdle, kind: kindBool, def: "true"},
	{key: KeyDebuggingEnabled, kind: kindBool, def: "false"},
}

func lookup(key string) (definition, bool) {
	for _, d := range definitions {
		if d.key == key {
			return d, true
		}
	}
	return definition{}, false
}

// Keys returns every known setting key in display order.
func Keys() []string {
	keys := make([]string, len(definitions))
	for i, d := range definitions {
		keys[i] = d.key
	}
	return keys
}

// Normalize validates value for key and returns its canonical string form.
func Normalize(key, value string) (string, error) {
	d, ok := lookup(key)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	value = strings.TrimSpace(value)
	switch d.kind {
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return "", fmt.Errorf("%w: %s must be true or false", ErrInvalidValue, key)
		}
		return strconv.FormatBool(b), nil
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return "", fmt.Errorf("%w: %s must be a non-negative integer", ErrInvalidValue, key)
		}
		return strconv.Itoa(n), nil
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return "", fmt.Errorf("%w: %s must be a non-negative number", ErrInvalidValue, key)
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	case kindEnum:
		value = strings.ToLower(value)
		if !slices.Contains(d.allowed, value) {
			return "", fmt.Errorf("%w: %s must be one of %s", ErrInvalidValue, key, strings.Join(d.allowed, ", "))
		}
		return value, nil
	default:
		return value, nil
	}
}

// Settings is a point-in-time snapshot of the user's preferences.
type Settings struct {
	DefaultAction string `json:"default_action" toml:"default_action"`

	CleanWhenIdle         bool   `json:"clean_when_idle" toml:"clean_when_idle"`
	CleanWhenLowDiskSpace bool   `json:"clean_when_low_disk_space" toml:"clean_when_low_disk_space"`
	DiskSpaceThreshold    int    `json:"disk_space_threshold" toml:"disk_space_threshold"`
	DiskSpaceCheckPath    string `json:"disk_space_check_path" toml:"disk_space_check_path"`

	CleanMovies      bool `json:"clean_movies" toml:"clean_movies"`
	CleanTVShows     bool `json:"clean_tv_shows" toml:"clean_tv_shows"`
	CleanMusicVideos bool `json:"clean_music_videos" toml:"clean_music_videos"`

	EnableExpiration  bool    `json:"enable_expiration" toml:"enable_expiration"`
	ExpireAfter       float64 `json:"expire_after" toml:"expire_after"`
	CleanWhenLowRated bool    `json:"clean_when_low_rated" toml:"clean_when_low_rated"`
	MinimumRating     float64 `json:"minimum_rating" toml:"minimum_rating"`
	IgnoreNoRating    bool    `json:"ignore_no_rating" toml:"ignore_no_rating"`
	NotInProgress     bool    `json:"not_in_progress" toml:"not_in_progress"`

	ExclusionEnabled bool   `json:"exclusion_enabled" toml:"exclusion_enabled"`
	Exclusion1       string `json:"exclusion1" toml:"exclusion1"`
	Exclusion2       string `json:"exclusion2" toml:"exclusion2"`
	Exclusion3       string `json:"exclusion3" toml:"exclusion3"`
	Exclusion4       string `json:"exclusion4" toml:"exclusion4"`
	Exclusion5       string `json:"exclusion5" toml:"exclusion5"`

	CleaningType     CleaningType `json:"cleaning_type" toml:"cleaning_type"`
	HoldingFolder    string       `json:"holding_folder" toml:"holding_folder"`
	CreateSubdirs    bool         `json:"create_subdirs" toml:"create_subdirs"`
	CleanRelated     bool         `json:"clean_related" toml:"clean_related"`
	DeleteFolders    bool         `json:"delete_folders" toml:"delete_folders"`
	IgnoreExtensions string       `json:"ignore_extensions" toml:"ignore_extensions"`
	KeepHardLinked   bool         `json:"keep_hard_linked" toml:"keep_hard_linked"`

	CleanLibrary         bool `json:"clean_library" toml:"clean_library"`
	NotificationsEnabled bool `json:"notifications_enabled" toml:"notifications_enabled"`
	NotifyWhenIdle       bool `json:"notify_when_idle" toml:"notify_when_idle"`
	DebuggingEnabled     bool `json:"debugging_enabled" toml:"debugging_enabled"`
}

// Defaults returns the settings a fresh installation starts with.
func Defaults() Settings {
	return fromValues(nil)
}

// Exclusions returns the non-empty path exclusions, or nil when exclusions
// are disabled.
func (s Settings) Exclusions() []string {
	if !s.ExclusionEnabled {
		return nil
	}
	var out []string
	for _, e := range []string{s.Exclusion1, s.Exclusion2, s.Exclusion3, s.Exclusion4, s.Exclusion5} {
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}

// IgnoredExtensions splits the comma separated ignore list into trimmed,
// lower-cased extensions including their leading dot.
func (s Settings) IgnoredExtensions() []string {
	var out []string
	for _, ext := range strings.Split(s.IgnoreExtensions, ",") {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}

// fromValues builds a snapshot from raw stored values, falling back to the
// default for every key that is missing or unparsable.
func fromValues(values map[string]string) Settings {
	get := func(key string) string {
		d, _ := lookup(key)
		if v, ok := values[key]; ok {
			if n, err := Normalize(key, v); err == nil {
				return n
			}
		}
		return d.def
	}
	getBool := func(key string) bool {
		b, _ := strconv.ParseBool(get(key))
		return b
	}
	getInt := func(key string) int {
		n, _ := strconv.Atoi(get(key))
		return n
	}
	getFloat := func(key string) float64 {
		f, _ := strconv.ParseFloat(get(key), 64)
		return f
	}

	return Settings{
		DefaultAction:         get(KeyDefaultAction),
		CleanWhenIdle:         getBool(KeyCleanWhenIdle),
		CleanWhenLowDiskSpace: getBool(KeyCleanWhenLowDiskSpace),
		DiskSpaceThreshold:    getInt(KeyDiskSpaceThreshold),
		DiskSpaceCheckPath:    get(KeyDiskSpaceCheckPath),
		CleanMovies:           getBool(KeyCleanMovies),
		CleanTVShows:          getBool(KeyCleanTVShows),
		CleanMusicVideos:      getBool(KeyCleanMusicVideos),
		EnableExpiration:      getBool(KeyEnableExpiration),
		ExpireAfter:           getFloat(KeyExpireAfter),
		CleanWhenLowRated:     getBool(KeyCleanWhenLowRated),
		MinimumRating:         getFloat(KeyMinimumRating),
		IgnoreNoRating:        getBool(KeyIgnoreNoRating),
		NotInProgress:         getBool(KeyNotInProgress),
		ExclusionEnabled:      getBool(KeyExclusionEnabled),
		Exclusion1:            get(KeyExclusion1),
		Exclusion2:            get(KeyExclusion2),
		Exclusion3:            get(KeyExclusion3),
		Exclusion4:            get(KeyExclusion4),
		Exclusion5:            get(KeyExclusion5),
		CleaningType:          CleaningType(get(KeyCleaningType)),
		HoldingFolder:         get(KeyHoldingFolder),
		CreateSubdirs:         getBool(KeyCreateSubdirs),
		CleanRelated:          getBool(KeyCleanRelated),
		DeleteFolders:         getBool(KeyDeleteFolders),
		IgnoreExtensions:      get(KeyIgnoreExtensions),
		KeepHardLinked:        getBool(KeyKeepHardLinked),
		CleanLibrary:          getBool(KeyCleanLibrary),
		NotificationsEnabled:  getBool(KeyNotificationsEnabled),
		NotifyWhenIdle:        getBool(KeyNotifyWhenIdle),
		DebuggingEnabled:      getBool(KeyDebuggingEnabled),
	}
}
