package openlibrary

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

const searchFixture = `{
	"numFound": 2,
	"docs": [
		{
			"key": "/works/OL45883W",
			"title": "Fantastic Mr Fox",
			"author_name": ["Roald Dahl"],
			"first_publish_year": 1970,
			"cover_i": 6498519,
			"isbn": ["9780140328721"],
			"language": ["eng"],
			"publisher": ["Puffin"],
			"edition_count": 120
		},
		{
			"key": "/works/OL27448W",
			"title": "The Lord of the Rings",
			"author_name": ["J.R.R. Tolkien"],
			"first_publish_year": 1954,
			"edition_count": 250
		}
	]
}`

const workFixture = `{
	"title": "Fantastic Mr Fox",
	"description": {"type": "/type/text", "value": "The main character of <b>Fantastic Mr Fox</b> is an extremely clever fox."},
	"subjects": ["Foxes", "Fiction", "Farmers"],
	"covers": [6498519]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	client := New(server.URL, logger)
	client.http = server.Client()

	return client, server
}

func TestClient_Search(t *testing.T) {
	tests := []struct {
		name       string
		response   []byte
		statusCode int
		wantCount  int
		wantErr    error
	}{
		{
			name:       "successful search",
			response:   []byte(searchFixture),
			statusCode: http.StatusOK,
			wantCount:  2,
		},
		{
			name:       "empty results",
			response:   []byte(`{"numFound": 0, "docs": []}`),
			statusCode: http.StatusOK,
			wantCount:  0,
		},
		{
			name:       "rate limited",
			statusCode: http.StatusTooManyRequests,
			wantErr:    ErrRateLimited,
		},
		{
			name:       "server error",
			statusCode: http.StatusInternalServerError,
			wantErr:    ErrServer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				if tt.response != nil {
					w.Write(tt.response)
				}
			}

			client, server := newTestClient(t, handler)
			defer server.Close()
			defer client.Close()

			results, err := client.Search(context.Background(), SearchParams{Query: "fox"})

			if tt.wantErr != nil {
				if err == nil {
					t.Errorf("expected error %v, got nil", tt.wantErr)
					return
				}
				var olErr *Error
				if errors.As(err, &olErr) {
					if !errors.Is(olErr.Err, tt.wantErr) {
						t.Errorf("expected wrapped error %v, got %v", tt.wantErr, olErr.Err)
					}
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if len(results) != tt.wantCount {
				t.Errorf("got %d results, want %d", len(results), tt.wantCount)
			}
		})
	}
}

func TestClient_Search_ParsesDocs(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "fox" {
			t.Errorf("expected q=fox, got %q", got)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(searchFixture))
	}

	client, server := newTestClient(t, handler)
	defer server.Close()
	defer client.Close()

	results, err := client.Search(context.Background(), SearchParams{Query: "fox"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	first := results[0]
	if first.WorkID != "OL45883W" {
		t.Errorf("work ID = %q, want OL45883W", first.WorkID)
	}
	if first.Title != "Fantastic Mr Fox" {
		t.Errorf("title = %q", first.Title)
	}
	if len(first.Authors) != 1 || first.Authors[0] != "Roald Dahl" {
		t.Errorf("authors = %v", first.Authors)
	}
	if first.FirstPublishYear != 1970 {
		t.Errorf("year = %d, want 1970", first.FirstPublishYear)
	}
	if first.ISBN != "9780140328721" {
		t.Errorf("isbn = %q", first.ISBN)
	}
	if first.Publisher != "Puffin" {
		t.Errorf("publisher = %q", first.Publisher)
	}
	if first.CoverURL == "" {
		t.Error("expected cover URL for doc with cover_i")
	}

	// Second doc has no cover or ISBN.
	if results[1].CoverURL != "" {
		t.Errorf("expected empty cover URL, got %q", results[1].CoverURL)
	}
	if results[1].ISBN != "" {
		t.Errorf("expected empty ISBN, got %q", results[1].ISBN)
	}
}

func TestClient_Search_RequiresQuery(t *testing.T) {
	client := New("", slog.New(slog.NewTextHandler(os.Stdout, nil)))
	defer client.Close()

	_, err := client.Search(context.Background(), SearchParams{})
	if !errors.Is(err, ErrBadRequest) {
		t.Errorf("expected ErrBadRequest, got %v", err)
	}
}

func TestClient_GetWork(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/works/OL45883W.json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(workFixture))
	}

	client, server := newTestClient(t, handler)
	defer server.Close()
	defer client.Close()

	work, err := client.GetWork(context.Background(), "OL45883W")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if work.Title != "Fantastic Mr Fox" {
		t.Errorf("title = %q", work.Title)
	}
	// HTML in the description is converted to Markdown.
	if work.Description != "The main character of **Fantastic Mr Fox** is an extremely clever fox." {
		t.Errorf("description = %q", work.Description)
	}
	if len(work.Subjects) != 3 {
		t.Errorf("subjects = %v", work.Subjects)
	}
	if work.CoverURL == "" {
		t.Error("expected cover URL")
	}
}

func TestClient_GetWork_StringDescription(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"title": "Plain", "description": "Just text."}`))
	}

	client, server := newTestClient(t, handler)
	defer server.Close()
	defer client.Close()

	work, err := client.GetWork(context.Background(), "OL1W")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if work.Description != "Just text." {
		t.Errorf("description = %q", work.Description)
	}
}

func TestClient_GetWork_InvalidID(t *testing.T) {
	client := New("", slog.New(slog.NewTextHandler(os.Stdout, nil)))
	defer client.Close()

	_, err := client.GetWork(context.Background(), "not-a-work-id")
	if !errors.Is(err, ErrInvalidWorkID) {
		t.Errorf("expected ErrInvalidWorkID, got %v", err)
	}
}

func TestClient_GetWork_NotFound(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}

	client, server := newTestClient(t, handler)
	defer server.Close()
	defer client.Close()

	_, err := client.GetWork(context.Background(), "OL999W")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCoverURL(t *testing.T) {
	if got := CoverURL(6498519); got != "https://covers.openlibrary.org/b/id/6498519-L.jpg" {
		t.Errorf("CoverURL = %q", got)
	}
	if got := CoverURL(0); got != "" {
		t.Errorf("expected empty URL for zero ID, got %q", got)
	}
}

func TestCleanDescription(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "A quiet novel.", "A quiet novel."},
		{"markdown passthrough", "A *quiet* novel.", "A *quiet* novel."},
		{"html converted", "<p>A <em>quiet</em> novel.</p>", "A *quiet* novel."},
		{"whitespace trimmed", "  spaced out  ", "spaced out"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanDescription(tt.in); got != tt.want {
				t.Errorf("cleanDescription(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidWorkID(t *testing.T) {
	valid := []string{"OL45883W", "OL1W"}
	invalid := []string{"", "OL45883M", "45883W", "ol45883w", "OLW"}

	for _, id := range valid {
		if !ValidWorkID(id) {
			t.Errorf("expected %q to be valid", id)
		}
	}
	for _, id := range invalid {
		if ValidWorkID(id) {
			t.Errorf("expected %q to be invalid", id)
		}
	}
}
