// Package mangadex holds the typed records and URL builders for the MangaDex
// endpoints mangarchive reads: the chapter feed of a manga, the at-home
// server metadata of a chapter, and the page images on the uploads host.
//
// Parsing is strict. A document missing a field the pipeline depends on is
// rejected with services.ErrMalformed instead of producing zero values.
package mangadex
