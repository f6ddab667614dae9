package language

import (
	"fmt"
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

type entry struct {
	code2 string   // ISO 639-1 (2-letter)
	code3 string   // ISO 639-2 primary (3-letter)
	alt3  string   // ISO 639-2 alternate (e.g. "fre" vs "fra")
	words []string // Full word forms (e.g. "english")
}

var languages = []entry{
	{"en", "eng", "", []string{"english"}},
	{"es", "spa", "", []string{"spanish"}},
	{"fr", "fra", "fre", []string{"french"}},
	{"de", "deu", "ger", []string{"german"}},
	{"it", "ita", "", []string{"italian"}},
	{"pt", "por", "", []string{"portuguese"}},
	{"ja", "jpn", "", []string{"japanese"}},
	{"ko", "kor", "", []string{"korean"}},
	{"zh", "zho", "chi", []string{"chinese"}},
	{"ru", "rus", "", []string{"russian"}},
	{"ar", "ara", "", []string{"arabic"}},
	{"id", "ind", "", []string{"indonesian"}},
	{"vi", "vie", "", []string{"vietnamese"}},
	{"th", "tha", "", []string{"thai"}},
	{"tr", "tur", "", []string{"turkish"}},
	{"pl", "pol", "", []string{"polish"}},
	{"uk", "ukr", "", []string{"ukrainian"}},
	{"nl", "nld", "dut", []string{"dutch"}},
}

// Index maps built at init time.
var (
	byCode3 map[string]*entry
	byWord  map[string]*entry
)

func init() {
	byCode3 = make(map[string]*entry, len(languages)*2)
	byWord = make(map[string]*entry, len(languages))
	for i := range languages {
		e := &languages[i]
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
		for _, w := range e.words {
			byWord[w] = e
		}
	}
}

// Normalize converts a user-supplied language argument into the lowercase tag
// form the catalog uses for translatedLanguage ("en", "pt-br", "es-la").
// Three-letter codes and English words are mapped to their two-letter form;
// a regional suffix is preserved. The result must parse as a BCP 47 tag.
func Normalize(code string) (string, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	code = strings.ReplaceAll(code, "_", "-")
	if code == "" {
		return "", fmt.Errorf("language code is empty")
	}
	base, region, hasRegion := strings.Cut(code, "-")
	if e, ok := byWord[base]; ok {
		base = e.code2
	} else if e, ok := byCode3[base]; ok {
		base = e.code2
	}
	normalized := base
	if hasRegion {
		normalized = base + "-" + region
	}
	if _, err := xlanguage.Parse(normalized); err != nil {
		return "", fmt.Errorf("language code %q is not a valid tag: %w", code, err)
	}
	return normalized, nil
}

// DisplayName returns the English name for a language tag, falling back to
// the uppercased code when the tag is unknown.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	tag, err := xlanguage.Parse(trimmed)
	if err != nil {
		return strings.ToUpper(trimmed)
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return strings.ToUpper(trimmed)
}
