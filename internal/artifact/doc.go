// Package artifact provides the existence-gated cache every pipeline stage
// writes through.
//
// An artifact is addressed by a slash-separated key relative to a store root
// (the collection directory). Presence of the key is the only signal of
// completion: there are no checksums and no index. Writes are atomic so an
// interrupted run never leaves a partial artifact at its final key.
package artifact
