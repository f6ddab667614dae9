package mangadex

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"mangarchive/internal/services"
	"mangarchive/internal/textutil"
)

// ListingPage is one cached page of a manga's chapter feed.
type ListingPage struct {
	Index int
	// Total is the feed size reported by the server; only page 0's value is used.
	Total   int
	Entries []Entry
}

// Entry is a single item of the chapter feed.
type Entry struct {
	ID       string
	Type     string
	Language string
	// Chapter is the raw chapter number; it may be fractional, non-numeric, or empty.
	Chapter     string
	ExternalURL string
}

// IsExternal reports whether the chapter is hosted off-site.
func (e Entry) IsExternal() bool {
	return strings.TrimSpace(e.ExternalURL) != ""
}

// OrderingKey names every artifact derived from the entry. Entries without a
// chapter number (oneshots) are keyed by a prefix of their ID.
func (e Entry) OrderingKey() string {
	if key := textutil.SanitizePathSegment(e.Chapter); key != "" {
		return key
	}
	id := e.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return textutil.SanitizePathSegment("oneshot-" + id)
}

// ChapterMetadata is the at-home server description of a chapter's pages.
type ChapterMetadata struct {
	Hash  string
	Pages []string
}

type feedDocument struct {
	Total *int             `json:"total"`
	Data  *[]entryDocument `json:"data"`
}

type entryDocument struct {
	ID         *string `json:"id"`
	Type       *string `json:"type"`
	Attributes *struct {
		TranslatedLanguage *string `json:"translatedLanguage"`
		Chapter            *string `json:"chapter"`
		ExternalURL        *string `json:"externalUrl"`
	} `json:"attributes"`
}

type atHomeDocument struct {
	Chapter *struct {
		Hash *string   `json:"hash"`
		Data *[]string `json:"data"`
	} `json:"chapter"`
}

// ParseListingPage decodes a cached feed page.
func ParseListingPage(index int, data []byte) (ListingPage, error) {
	var doc feedDocument
	if err := decodeStrict(data, &doc); err != nil {
		return ListingPage{}, malformed("listing page", index, err.Error())
	}
	if doc.Total == nil {
		return ListingPage{}, malformed("listing page", index, "missing total")
	}
	if *doc.Total < 0 {
		return ListingPage{}, malformed("listing page", index, fmt.Sprintf("negative total %d", *doc.Total))
	}
	if doc.Data == nil {
		return ListingPage{}, malformed("listing page", index, "missing data")
	}

	page := ListingPage{Index: index, Total: *doc.Total, Entries: make([]Entry, 0, len(*doc.Data))}
	for pos, raw := range *doc.Data {
		entry, err := raw.toEntry()
		if err != nil {
			return ListingPage{}, malformed("listing page", index, fmt.Sprintf("entry %d: %v", pos, err))
		}
		page.Entries = append(page.Entries, entry)
	}
	return page, nil
}

func (d entryDocument) toEntry() (Entry, error) {
	if d.ID == nil || strings.TrimSpace(*d.ID) == "" {
		return Entry{}, fmt.Errorf("missing id")
	}
	if d.Type == nil {
		return Entry{}, fmt.Errorf("missing type")
	}
	if d.Attributes == nil {
		return Entry{}, fmt.Errorf("missing attributes")
	}
	if d.Attributes.TranslatedLanguage == nil {
		return Entry{}, fmt.Errorf("missing attributes.translatedLanguage")
	}
	entry := Entry{
		ID:       strings.TrimSpace(*d.ID),
		Type:     *d.Type,
		Language: *d.Attributes.TranslatedLanguage,
	}
	if d.Attributes.Chapter != nil {
		entry.Chapter = *d.Attributes.Chapter
	}
	if d.Attributes.ExternalURL != nil {
		entry.ExternalURL = *d.Attributes.ExternalURL
	}
	return entry, nil
}

// ParseChapterMetadata decodes a cached at-home server document.
func ParseChapterMetadata(data []byte) (ChapterMetadata, error) {
	var doc atHomeDocument
	if err := decodeStrict(data, &doc); err != nil {
		return ChapterMetadata{}, malformed("chapter metadata", -1, err.Error())
	}
	if doc.Chapter == nil {
		return ChapterMetadata{}, malformed("chapter metadata", -1, "missing chapter")
	}
	if doc.Chapter.Hash == nil || strings.TrimSpace(*doc.Chapter.Hash) == "" {
		return ChapterMetadata{}, malformed("chapter metadata", -1, "missing chapter.hash")
	}
	if doc.Chapter.Data == nil {
		return ChapterMetadata{}, malformed("chapter metadata", -1, "missing chapter.data")
	}
	if len(*doc.Chapter.Data) == 0 {
		return ChapterMetadata{}, malformed("chapter metadata", -1, "chapter.data is empty")
	}
	for i, page := range *doc.Chapter.Data {
		if strings.TrimSpace(page) == "" {
			return ChapterMetadata{}, malformed("chapter metadata", -1, fmt.Sprintf("chapter.data[%d] is empty", i))
		}
	}
	return ChapterMetadata{
		Hash:  strings.TrimSpace(*doc.Chapter.Hash),
		Pages: append([]string(nil), (*doc.Chapter.Data)...),
	}, nil
}

func decodeStrict(data []byte, v any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("expected JSON object")
	}
	return json.Unmarshal(trimmed, v)
}

func malformed(kind string, index int, detail string) error {
	if index >= 0 {
		kind = fmt.Sprintf("%s %d", kind, index)
	}
	return services.Wrap(services.ErrMalformed, "parse", kind, detail, nil)
}
