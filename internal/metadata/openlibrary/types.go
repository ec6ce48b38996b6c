package openlibrary

import "regexp"

// SearchParams configures a catalogue search.
type SearchParams struct {
	// Query is a free-text query matched across titles and authors.
	Query string
	// Title restricts matches to book titles.
	Title string
	// Author restricts matches to author names.
	Author string
	// Limit caps the number of results (default 25, max 50).
	Limit int
}

// WorkHit is one hit from a catalogue search.
type WorkHit struct {
	WorkID           string   `json:"work_id"`
	Title            string   `json:"title"`
	Authors          []string `json:"authors,omitempty"`
	FirstPublishYear int      `json:"first_publish_year,omitempty"`
	CoverURL         string   `json:"cover_url,omitempty"`
	ISBN             string   `json:"isbn,omitempty"`
	Languages        []string `json:"languages,omitempty"`
	Publisher        string   `json:"publisher,omitempty"`
	EditionCount     int      `json:"edition_count,omitempty"`
}

// WorkMetadata is the full metadata for a single work.
// Description is Markdown; HTML descriptions are converted on the way in.
type WorkMetadata struct {
	WorkID      string   `json:"work_id"`
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle,omitempty"`
	Description string   `json:"description,omitempty"`
	Subjects    []string `json:"subjects,omitempty"`
	CoverURL    string   `json:"cover_url,omitempty"`
}

// workIDPattern matches Open Library work identifiers like "OL45883W".
var workIDPattern = regexp.MustCompile(`^OL\d+W$`)

// ValidWorkID reports whether s looks like an Open Library work ID.
func ValidWorkID(s string) bool {
	return workIDPattern.MatchString(s)
}
