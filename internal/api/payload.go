package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PassageGroup is one element of the grouped payload shape: book metadata plus
// verses keyed translation -> chapter -> verse. Chapter and verse keys arrive
// as decimal strings.
type PassageGroup struct {
	BookID    int                                          `json:"book"`
	BookName  string                                       `json:"book_name"`
	BookShort string                                       `json:"book_short"`
	Verses    map[string]map[string]map[string]VerseRecord `json:"verses"`
}

// DisplayBook returns the best available book label for the group.
func (g PassageGroup) DisplayBook() string {
	if g.BookName != "" {
		return g.BookName
	}
	if g.BookShort != "" {
		return g.BookShort
	}
	return "Unknown"
}

// PassagePayload is the tagged union over the two payload shapes the API may
// serve. Exactly one of Groups and Legacy is set after a successful decode.
// The grouped shape is current; the legacy translation-keyed shape stays
// supported because old shared links assume it.
type PassagePayload struct {
	Groups []PassageGroup
	Legacy map[string][]VerseRecord

	loaded bool
}

// Loaded distinguishes "decoded, possibly empty" from "not yet fetched".
func (p PassagePayload) Loaded() bool { return p.loaded }

// UnmarshalJSON is the single dispatch point for shape detection: an array is
// the grouped shape, an object is the legacy mapping.
func (p *PassagePayload) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*p = PassagePayload{loaded: true}
		return nil
	}
	switch trimmed[0] {
	case '[':
		var groups []PassageGroup
		if err := json.Unmarshal(data, &groups); err != nil {
			return err
		}
		*p = PassagePayload{Groups: groups, loaded: true}
		return nil
	case '{':
		var legacy map[string][]VerseRecord
		if err := json.Unmarshal(data, &legacy); err != nil {
			return err
		}
		*p = PassagePayload{Legacy: legacy, loaded: true}
		return nil
	default:
		return fmt.Errorf("api: passage payload is neither array nor object")
	}
}

// MarshalJSON round-trips whichever variant is set.
func (p PassagePayload) MarshalJSON() ([]byte, error) {
	if p.Groups != nil {
		return json.Marshal(p.Groups)
	}
	if p.Legacy != nil {
		return json.Marshal(p.Legacy)
	}
	return []byte("null"), nil
}
