// Package collection derives the identity of the manga being archived from
// the user's URL and language argument.
package collection

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	lang "mangarchive/internal/language"
	"mangarchive/internal/services"
	"mangarchive/internal/textutil"
)

// Ref identifies one collection for the duration of a run.
type Ref struct {
	// ID is the manga identifier, the second-to-last URL path segment.
	ID string
	// Name is the last URL path segment, usually a slug of the title.
	Name     string
	Language string
}

// Parse builds a Ref from a title URL such as
// https://mangadex.org/title/<id>/<slug> and a language code.
func Parse(rawURL, language string) (Ref, error) {
	trimmed := strings.TrimSpace(rawURL)
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return Ref{}, services.Wrap(services.ErrUsage, "", "parse url", trimmed, err)
	}
	if parsed.Scheme != "https" {
		return Ref{}, services.Wrap(services.ErrUsage, "", "", fmt.Sprintf("URL seems wrong, scheme is not https [%s]", trimmed), nil)
	}

	var segments []string
	for _, segment := range strings.Split(parsed.Path, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	if len(segments) < 2 {
		return Ref{}, services.Wrap(services.ErrUsage, "", "", fmt.Sprintf("URL path needs an id and a name segment [%s]", trimmed), nil)
	}

	name := textutil.SanitizePathSegment(segments[len(segments)-1])
	id := strings.TrimSpace(segments[len(segments)-2])
	if name == "" || id == "" {
		return Ref{}, services.Wrap(services.ErrUsage, "", "", fmt.Sprintf("URL path has an empty id or name [%s]", trimmed), nil)
	}

	code, err := lang.Normalize(language)
	if err != nil {
		return Ref{}, services.Wrap(services.ErrUsage, "", "parse language", "", err)
	}

	return Ref{ID: id, Name: name, Language: code}, nil
}

// DirName is the collection working directory name, "<name>-<lang>".
func (r Ref) DirName() string {
	return r.Name + "-" + r.Language
}

// Title renders the slug as a human-facing title: "one-piece" becomes "One Piece".
func (r Ref) Title() string {
	words := strings.FieldsFunc(r.Name, func(c rune) bool { return c == '-' || c == '_' })
	return cases.Title(language.Und).String(strings.Join(words, " "))
}

// LanguageName returns the English name of the target language.
func (r Ref) LanguageName() string {
	return lang.DisplayName(r.Language)
}
