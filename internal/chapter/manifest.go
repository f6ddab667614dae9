package chapter

import (
	"bytes"
	"fmt"
)

// BuildManifest renders the AsciiDoc document for a chapter. The first page
// doubles as the cover image.
func BuildManifest(name, language, key string, assetNames []string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "= %s - %s - Chapter %s\n", name, language, key)
	fmt.Fprintf(&b, ":lang: %s\n", language)
	for i, asset := range assetNames {
		ref := key + "/" + asset
		if i == 0 {
			fmt.Fprintf(&b, ":front-cover-image: %s\n\n", ref)
		}
		fmt.Fprintf(&b, "image::%s[]\n", ref)
	}
	return b.Bytes()
}
