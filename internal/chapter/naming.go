package chapter

import (
	"fmt"
	"path"
	"strconv"
)

// Artifact extensions produced per chapter.
const (
	ExtArchive  = ".cbz"
	ExtManifest = ".adoc"
	ExtRendered = ".epub"
)

// PaddingWidth is the number of digits in pageCount; page indices are
// zero-padded to this width.
func PaddingWidth(pageCount int) int {
	return len(strconv.Itoa(pageCount))
}

// AssetName is the local file name of page index: the zero-padded index plus
// the extension of the remote page path.
func AssetName(pagePath string, index, width int) string {
	return fmt.Sprintf("%0*d%s", width, index, path.Ext(pagePath))
}

// AssetNames returns the local file names of every page in order.
func AssetNames(pages []string) []string {
	width := PaddingWidth(len(pages))
	names := make([]string, len(pages))
	for i, page := range pages {
		names[i] = AssetName(page, i, width)
	}
	return names
}

// MetadataKey is the artifact key of a chapter's cached metadata document.
func MetadataKey(key string) string {
	return "chapter-" + key + ".json"
}

// AssetKey is the artifact key of one page image inside the chapter directory.
func AssetKey(key, name string) string {
	return key + "/" + name
}

// OutputKey is the artifact key of a packaged chapter output, e.g.
// "one-piece-en-12.cbz".
func OutputKey(collectionDir, key, ext string) string {
	return collectionDir + "-" + key + ext
}
