package mangadex

import (
	"net/url"
	"strconv"
	"strings"
)

// Endpoints builds request URLs against configurable API and uploads hosts.
type Endpoints struct {
	APIBase        string
	UploadsBase    string
	PageSize       int
	ContentRatings []string
	Includes       []string
}

// FeedURL returns the chapter feed URL for page index of the given manga.
// Bracketed parameter names are written literally, the form the API documents.
func (e Endpoints) FeedURL(mangaID string, index int) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(e.APIBase, "/"))
	b.WriteString("/manga/")
	b.WriteString(url.PathEscape(mangaID))
	b.WriteString("/feed?limit=")
	b.WriteString(strconv.Itoa(e.PageSize))
	for _, include := range e.Includes {
		b.WriteString("&includes[]=")
		b.WriteString(url.QueryEscape(include))
	}
	b.WriteString("&order[volume]=desc&order[chapter]=desc&offset=")
	b.WriteString(strconv.Itoa(index * e.PageSize))
	for _, rating := range e.ContentRatings {
		b.WriteString("&contentRating[]=")
		b.WriteString(url.QueryEscape(rating))
	}
	return b.String()
}

// AtHomeURL returns the page-server metadata URL for a chapter.
func (e Endpoints) AtHomeURL(chapterID string) string {
	return strings.TrimRight(e.APIBase, "/") + "/at-home/server/" + url.PathEscape(chapterID) + "?forcePort443=false"
}

// AssetURL returns the download URL of one page image.
func (e Endpoints) AssetURL(hash, pagePath string) string {
	return strings.TrimRight(e.UploadsBase, "/") + "/data/" + url.PathEscape(hash) + "/" + url.PathEscape(pagePath)
}

// PageCount returns ceil(total / pageSize).
func (e Endpoints) PageCount(total int) int {
	if e.PageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + e.PageSize - 1) / e.PageSize
}
