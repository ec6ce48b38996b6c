package openlibrary

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/url"
	"strconv"
)

// searchFields limits search responses to the fields we actually read.
const searchFields = "key,title,author_name,first_publish_year,cover_i,isbn,language,publisher,edition_count"

// Search searches the Open Library catalogue.
func (c *Client) Search(ctx context.Context, params SearchParams) ([]WorkHit, error) {
	query := url.Values{}

	if params.Query != "" {
		query.Set("q", params.Query)
	}
	if params.Title != "" {
		query.Set("title", params.Title)
	}
	if params.Author != "" {
		query.Set("author", params.Author)
	}
	if len(query) == 0 {
		return nil, wrapError("search", "", ErrBadRequest)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultNumResults
	}
	if limit > maxNumResults {
		limit = maxNumResults
	}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("fields", searchFields)

	body, err := c.doRequest(ctx, "/search.json", query)
	if err != nil {
		return nil, wrapError("search", "", err)
	}

	var resp struct {
		Docs []rawSearchDoc `json:"docs"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, wrapError("search", "", fmt.Errorf("parse response: %w", err))
	}

	results := make([]WorkHit, 0, len(resp.Docs))
	for i := range resp.Docs {
		d := &resp.Docs[i]

		result := WorkHit{
			WorkID:           workIDFromKey(d.Key),
			Title:            d.Title,
			Authors:          d.AuthorName,
			FirstPublishYear: d.FirstPublishYear,
			CoverURL:         CoverURL(d.CoverID),
			Languages:        d.Language,
			EditionCount:     d.EditionCount,
		}
		if len(d.ISBN) > 0 {
			result.ISBN = d.ISBN[0]
		}
		if len(d.Publisher) > 0 {
			result.Publisher = d.Publisher[0]
		}

		results = append(results, result)
	}

	return results, nil
}
