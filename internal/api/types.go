package api

import "strings"

// Translation is one entry of the remote catalog. Module is the short code
// used as the join key between the catalog, the preference store, the query
// string, and passage payloads.
type Translation struct {
	Module    string `json:"module"`
	Name      string `json:"name"`
	ShortName string `json:"shortname"`
	Lang      string `json:"lang"`
	LangShort string `json:"lang_short"`
}

// DisplayName prefers the short name, then the full name, then a formatted
// module code.
func (t Translation) DisplayName() string {
	if t.ShortName != "" {
		return t.ShortName
	}
	if t.Name != "" {
		return t.Name
	}
	return FormatModule(t.Module)
}

// wellKnown maps common module codes to their conventional capitalization.
var wellKnown = map[string]string{
	"kjv":     "KJV",
	"niv":     "NIV",
	"nkjv":    "NKJV",
	"esv":     "ESV",
	"nasb":    "NASB",
	"nlt":     "NLT",
	"nrsv":    "NRSV",
	"cjb":     "CJB",
	"amp":     "AMP",
	"msg":     "MSG",
	"cev":     "CEV",
	"gnv":     "GNV",
	"asv":     "ASV",
	"ylt":     "YLT",
	"web":     "WEB",
	"wbt":     "WBT",
	"darby":   "Darby",
	"kjv2000": "KJV2000",
}

// FormatModule turns a module code into something readable when the catalog
// has no entry for it.
func FormatModule(module string) string {
	if module == "" {
		return "Unknown"
	}
	if name, ok := wellKnown[strings.ToLower(module)]; ok {
		return name
	}
	words := strings.FieldsFunc(module, func(r rune) bool {
		return r == '-' || r == '_'
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// Book is canonical book metadata. IDs run 1..66; the Old Testament is
// id <= 39.
type Book struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Chapters int    `json:"chapters"`
}

// OldTestament reports whether the book belongs to the Old Testament.
func (b Book) OldTestament() bool { return b.ID <= 39 }

// VerseRecord is a single verse as the API delivers it. Book carries the
// numeric book id when the server includes it; zero means unknown.
type VerseRecord struct {
	Book     int    `json:"book,omitempty"`
	BookName string `json:"book_name,omitempty"`
	Chapter  int    `json:"chapter,omitempty"`
	Verse    int    `json:"verse,omitempty"`
	VerseEnd int    `json:"verse_end,omitempty"`
	Text     string `json:"text"`
}

// Error is the uniform error shape every fetch failure is converted to before
// it reaches the rest of the app. Status 0 means the remote was unreachable.
type Error struct {
	Message string
	Status  int
	Details []string
}

func (e *Error) Error() string { return e.Message }

// Metadata is the portion of the query response surrounding the results.
type Metadata struct {
	Errors     []string `json:"errors"`
	ErrorLevel int      `json:"error_level"`
}

// QueryResult is the envelope for passage queries. Success is false exactly
// when Err is set; callers never see a transport error escape as a panic or a
// bare error value.
type QueryResult struct {
	Success  bool
	Results  PassagePayload
	Metadata Metadata
	Err      *Error
}
