package chapter

import (
	"mangarchive/internal/artifact"
	"mangarchive/internal/mangadex"
)

// Inspection reports which artifacts of a chapter exist, without network access.
type Inspection struct {
	Key          string
	Pages        int
	AssetsCached int
	Archive      bool
	Manifest     bool
	Rendered     bool
}

// Complete reports whether every artifact through the manifest is present and,
// when rendering is enabled, the rendered document too.
func (i Inspection) Complete(renderEnabled bool) bool {
	done := i.Pages > 0 && i.AssetsCached == i.Pages && i.Archive && i.Manifest
	if renderEnabled {
		done = done && i.Rendered
	}
	return done
}

// Inspect examines the cached artifacts of chapter key. The chapter's metadata
// document must already be cached.
func Inspect(store artifact.Store, collectionDir, key string) (Inspection, error) {
	inspection := Inspection{Key: key}
	data, err := store.Read(MetadataKey(key))
	if err != nil {
		return inspection, err
	}
	meta, err := mangadex.ParseChapterMetadata(data)
	if err != nil {
		return inspection, err
	}
	inspection.Pages = len(meta.Pages)
	for _, name := range AssetNames(meta.Pages) {
		ok, err := store.Exists(AssetKey(key, name))
		if err != nil {
			return inspection, err
		}
		if ok {
			inspection.AssetsCached++
		}
	}
	for ext, target := range map[string]*bool{
		ExtArchive:  &inspection.Archive,
		ExtManifest: &inspection.Manifest,
		ExtRendered: &inspection.Rendered,
	} {
		ok, err := store.Exists(OutputKey(collectionDir, key, ext))
		if err != nil {
			return inspection, err
		}
		*target = ok
	}
	return inspection, nil
}
