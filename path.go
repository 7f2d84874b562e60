package tagsfs

import (
	"path"
	"strings"
)

// pathDerivedTags computes the tags a backing file carries by virtue of
// its real path: its filename without extension, its extension without
// the dot, and the name of its parent directory. These are formatted like
// stored tags but can never be written, so renames must preserve them.
func pathDerivedTags(fileID string) map[string]string {
	derived := make(map[string]string, 3)

	base := path.Base(fileID)
	ext := path.Ext(base)

	derived["filename"] = strings.TrimSuffix(base, ext)
	if ext != "" {
		derived["extension"] = strings.TrimPrefix(ext, ".")
	}
	if parent := path.Base(path.Dir(fileID)); parent != "." && parent != "/" {
		derived["parent"] = parent
	}

	return derived
}
