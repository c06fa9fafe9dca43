// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-finder/pkg/types"
)

func testCfg() types.SearchConfig {
	return types.SearchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   5 * time.Second,
			UserAgent: "paper-finder/test",
		},
		MaxResults: 15,
	}
}

const sampleCrossrefJSON = `{
  "message": {
    "items": [
      {
        "title": ["CRISPR-Cas9 Genome Editing"],
        "DOI": "10.1000/xyz",
        "author": [
          {"given": "Jennifer", "family": "Doudna"},
          {"given": "Emmanuelle", "family": "Charpentier"}
        ],
        "issued": {"date-parts": [[2014, 11, 28]]},
        "link": [
          {"URL": "https://example.org/meta.xml", "content-type": "text/xml"},
          {"URL": "https://example.org/paper.pdf", "content-type": "application/pdf"},
          {"URL": "https://example.org/other.pdf", "content-type": "application/pdf"}
        ]
      },
      {
        "title": [],
        "DOI": "",
        "author": [],
        "issued": {"date-parts": []}
      }
    ]
  }
}`

func jsonTestServer(statusCode int, contentType, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(statusCode)
		fmt.Fprint(w, body)
	}))
}

func TestCrossrefBackendSearch(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query.title")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleCrossrefJSON)
	}))
	defer ts.Close()

	old := crossrefSearchBase
	crossrefSearchBase = ts.URL
	defer func() { crossrefSearchBase = old }()

	b := &CrossrefBackend{Client: ts.Client()}
	records, err := b.Search(context.Background(), types.Query{Title: "CRISPR-Cas9 genome editing", FirstAuthorLastName: "Doudna"}, testCfg())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "CRISPR-Cas9 genome editing", gotQuery)

	r := records[0]
	assert.Equal(t, types.SourceCrossref, r.Source)
	assert.Equal(t, "CRISPR-Cas9 Genome Editing", r.Title)
	assert.Equal(t, "10.1000/xyz", r.DOI)
	assert.Equal(t, []string{"Jennifer Doudna", "Emmanuelle Charpentier"}, r.Authors)
	assert.Equal(t, "Doudna", r.FirstAuthorLastName)
	assert.Equal(t, 2014, r.Year)
	// The first application/pdf link wins; text/xml is skipped.
	assert.Equal(t, "https://example.org/paper.pdf", r.OAURL)

	// Sparse items still normalize without panicking.
	assert.Empty(t, records[1].Title)
	assert.Empty(t, records[1].OAURL)
	assert.Zero(t, records[1].Year)
}

func TestCrossrefBackendSearch_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
	}{
		{"server error", http.StatusInternalServerError, "application/json", "{}"},
		{"html error page", http.StatusOK, "text/html", "<html>down for maintenance</html>"},
		{"malformed json", http.StatusOK, "application/json", "{not json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := jsonTestServer(tt.status, tt.contentType, tt.body)
			defer ts.Close()

			old := crossrefSearchBase
			crossrefSearchBase = ts.URL
			defer func() { crossrefSearchBase = old }()

			b := &CrossrefBackend{Client: ts.Client()}
			_, err := b.Search(context.Background(), types.Query{Title: "anything at all"}, testCfg())
			assert.Error(t, err)
		})
	}
}

func TestCrossrefBackendSearch_EmptyResults(t *testing.T) {
	ts := jsonTestServer(http.StatusOK, "application/json", `{"message": {"items": []}}`)
	defer ts.Close()

	old := crossrefSearchBase
	crossrefSearchBase = ts.URL
	defer func() { crossrefSearchBase = old }()

	b := &CrossrefBackend{Client: ts.Client()}
	records, err := b.Search(context.Background(), types.Query{Title: "anything at all"}, testCfg())
	require.NoError(t, err)
	assert.Empty(t, records)
}
