package openlibrary

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"strings"
)

// maxSubjects caps how many subject headings a work import keeps.
// Open Library works routinely carry dozens of near-duplicate subjects.
const maxSubjects = 10

// GetWork fetches full metadata for a single work.
func (c *Client) GetWork(ctx context.Context, workID string) (*WorkMetadata, error) {
	if !ValidWorkID(workID) {
		return nil, wrapError("getWork", workID, ErrInvalidWorkID)
	}

	body, err := c.doRequest(ctx, "/works/"+workID+".json", nil)
	if err != nil {
		return nil, wrapError("getWork", workID, err)
	}

	var raw rawWork
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, wrapError("getWork", workID, fmt.Errorf("parse response: %w", err))
	}

	work := &WorkMetadata{
		WorkID:      workID,
		Title:       raw.Title,
		Subtitle:    raw.Subtitle,
		Description: cleanDescription(raw.Description.Value),
		Subjects:    trimSubjects(raw.Subjects),
	}
	if len(raw.Covers) > 0 {
		work.CoverURL = CoverURL(raw.Covers[0])
	}

	return work, nil
}

// trimSubjects normalizes subject headings for use as genres.
func trimSubjects(subjects []string) []string {
	var out []string
	for _, s := range subjects {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
		if len(out) == maxSubjects {
			break
		}
	}
	return out
}

// workIDFromKey extracts "OL45883W" from a key like "/works/OL45883W".
func workIDFromKey(key string) string {
	return strings.TrimPrefix(key, "/works/")
}

// Raw API response types (internal)

type rawSearchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	CoverID          int      `json:"cover_i"`
	ISBN             []string `json:"isbn"`
	Language         []string `json:"language"`
	Publisher        []string `json:"publisher"`
	EditionCount     int      `json:"edition_count"`
}

type rawWork struct {
	Title       string         `json:"title"`
	Subtitle    string         `json:"subtitle"`
	Description rawDescription `json:"description"`
	Subjects    []string       `json:"subjects"`
	Covers      []int          `json:"covers"`
}

// rawDescription handles the two shapes Open Library serves: a bare
// string or a {"type": "/type/text", "value": "..."} object.
type rawDescription struct {
	Value string
}

func (d *rawDescription) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		d.Value = s
		return nil
	}

	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	d.Value = obj.Value
	return nil
}
