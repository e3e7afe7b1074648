// Package grouping contains the pure filename heuristics that decide which
// uploaded files belong together as one project. No I/O happens here; the
// effectful half (folder creation, uploads) lives in the service layer.
package grouping

import (
	"path/filepath"
	"regexp"
	"strings"
)

// versionSuffix matches one trailing version/role marker: an optional -/_
// separator followed by digits or a known role token.
var versionSuffix = regexp.MustCompile(`(?i)[-_]?(\d+|v\d+|final|mix|master|stem|alt)$`)

// projectExtensions are DAW/session container formats. A file carrying one of
// these marks its whole group as a project.
var projectExtensions = map[string]struct{}{
	".ptx": {}, ".flp": {}, ".als": {}, ".logic": {},
	".rpp": {}, ".cpr": {}, ".aup": {}, ".band": {},
}

// audioExtensions are the playable formats eligible for metadata enrichment.
var audioExtensions = map[string]struct{}{
	".mp3": {}, ".wav": {}, ".aiff": {}, ".aif": {},
	".flac": {}, ".m4a": {}, ".ogg": {}, ".wma": {},
}

// FileGroup is a computed cluster of filenames sharing a normalized base name.
type FileGroup struct {
	BaseName string
	Members  []string
}

// FolderSpec describes one folder the ingestion flow should create before
// uploading. Project is true when the group contains a DAW session file.
type FolderSpec struct {
	BaseName string
	Project  bool
	Members  []string
}

// Plan is the pure output of the grouping decision phase.
// Assignment maps each planned filename to its group's base name; files
// absent from the map upload without a folder.
type Plan struct {
	Folders    []FolderSpec
	Assignment map[string]string
}

// BaseName strips the extension and one trailing version/role suffix from a
// filename. A file without an extension is its own base name. Normalizing an
// already-normalized base name yields itself.
func BaseName(fileName string) string {
	name := fileName
	if dot := strings.LastIndex(name, "."); dot > 0 {
		name = name[:dot]
	}
	stripped := versionSuffix.ReplaceAllString(name, "")
	stripped = strings.TrimRight(strings.TrimSpace(stripped), "-_")
	if stripped == "" {
		// "mix.wav" and friends keep their full base rather than collapsing
		// into an unnamed group.
		return strings.TrimSpace(name)
	}
	return stripped
}

// Group clusters filenames by case-insensitive base name, preserving
// first-seen order of both groups and members. The displayed BaseName keeps
// the casing of the first member seen. Empty entries are skipped.
func Group(fileNames []string) []FileGroup {
	index := make(map[string]int)
	var groups []FileGroup
	for _, name := range fileNames {
		if strings.TrimSpace(name) == "" {
			continue
		}
		base := BaseName(name)
		key := strings.ToLower(base)
		i, ok := index[key]
		if !ok {
			index[key] = len(groups)
			groups = append(groups, FileGroup{BaseName: base})
			i = len(groups) - 1
		}
		groups[i].Members = append(groups[i].Members, name)
	}
	return groups
}

// IsProjectFile reports whether the filename is a DAW/session container.
func IsProjectFile(fileName string) bool {
	_, ok := projectExtensions[strings.ToLower(filepath.Ext(fileName))]
	return ok
}

// IsAudioFile reports whether the filename is playable audio, matched
// case-insensitively against the extension allow-list.
func IsAudioFile(fileName string) bool {
	_, ok := audioExtensions[strings.ToLower(filepath.Ext(fileName))]
	return ok
}

// DetectProjectGroup returns the base name of the first group containing a
// project file, or "" when the batch has none.
func DetectProjectGroup(fileNames []string) string {
	for _, g := range Group(fileNames) {
		for _, m := range g.Members {
			if IsProjectFile(m) {
				return g.BaseName
			}
		}
	}
	return ""
}

// BuildPlan runs the folder-creation decision rule over a batch: a group gets
// a folder iff it has two or more members or contains a project file. Files
// in groups failing the rule stay out of the assignment and upload ungrouped.
func BuildPlan(fileNames []string) Plan {
	plan := Plan{Assignment: make(map[string]string)}
	for _, g := range Group(fileNames) {
		project := false
		for _, m := range g.Members {
			if IsProjectFile(m) {
				project = true
				break
			}
		}
		if len(g.Members) < 2 && !project {
			continue
		}
		plan.Folders = append(plan.Folders, FolderSpec{
			BaseName: g.BaseName,
			Project:  project,
			Members:  append([]string(nil), g.Members...),
		})
		for _, m := range g.Members {
			plan.Assignment[m] = g.BaseName
		}
	}
	return plan
}

// MergedProjectName computes the project name for a manual merge of two
// assets. Identical normalized titles (case-insensitive) win outright;
// otherwise the longest common prefix is used, with casing taken from the
// first title and a dangling separator trimmed. An empty prefix falls back
// to the first title.
func MergedProjectName(a, b string) string {
	na := strings.TrimSpace(BaseName(a))
	nb := strings.TrimSpace(BaseName(b))
	if strings.EqualFold(na, nb) {
		return na
	}
	ra, rb := []rune(na), []rune(nb)
	n := len(ra)
	if len(rb) < n {
		n = len(rb)
	}
	var prefix []rune
	for i := 0; i < n; i++ {
		if !strings.EqualFold(string(ra[i]), string(rb[i])) {
			break
		}
		prefix = append(prefix, ra[i])
	}
	name := strings.TrimRight(strings.TrimSpace(string(prefix)), "-_")
	if name == "" {
		return na
	}
	return name
}

// ClassifyKind infers a coarse asset kind from filename keywords, falling
// back to the uploader's primary role.
func ClassifyKind(fileName string, ownerRoles []string) string {
	lower := strings.ToLower(fileName)
	switch {
	case strings.Contains(lower, "loop"):
		return "LOOP"
	case strings.Contains(lower, "stem"):
		return "STEMS"
	case strings.Contains(lower, "vocal"):
		return "VOCAL"
	case strings.Contains(lower, "demo"):
		return "SONG_DEMO"
	case strings.Contains(lower, "reference"), strings.Contains(lower, "ref"):
		return "REFERENCE"
	case strings.Contains(lower, "session"):
		return "SESSION_FILES"
	}
	for _, role := range ownerRoles {
		switch strings.ToUpper(role) {
		case "ENGINEER":
			if strings.Contains(lower, "mix") {
				return "MIX"
			}
			if strings.Contains(lower, "master") {
				return "MASTER"
			}
		case "PRODUCER":
			return "BEAT"
		case "ARTIST":
			return "SONG_DEMO"
		}
	}
	return "BEAT"
}
