package store

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"caab-workers/internal/mapping"
	"caab-workers/internal/mapping/source"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// fakeES answers bulk requests with body and records the NDJSON lines it received.
func fakeES(t *testing.T, status int, body string) (*elasticsearch.Client, *[]string) {
	t.Helper()
	var lines []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sc := bufio.NewScanner(r.Body)
		for sc.Scan() {
			lines = append(lines, sc.Text())
		}
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return es, &lines
}

func testIssues() []mapping.Issue {
	return []mapping.Issue{
		{Kind: mapping.UnresolvedLookupReference, Path: "proceedings[0].matterType", Value: "ZZ"},
		{Kind: mapping.UnsupportedDiscriminantVariant, Path: "opponents[1]", Note: "both variants"},
	}
}

func TestIssues_Index(t *testing.T) {
	es, lines := fakeES(t, http.StatusOK, `{"errors":false,"items":[]}`)
	ix := NewIssues(es, "")
	ix.now = func() time.Time { return fixedNow }

	err := ix.Index(context.Background(), "300001234567", source.SystemSOA, testIssues())
	require.NoError(t, err)

	require.Len(t, *lines, 4)
	assert.Equal(t, IssueIndexName, gjson.Get((*lines)[0], "index._index").String())
	doc := (*lines)[1]
	assert.Equal(t, "300001234567", gjson.Get(doc, "caseReference").String())
	assert.Equal(t, "SOA", gjson.Get(doc, "source").String())
	assert.Equal(t, "UNRESOLVED_LOOKUP_REFERENCE", gjson.Get(doc, "kind").String())
	assert.Equal(t, "ZZ", gjson.Get(doc, "value").String())
	assert.Equal(t, "2024-03-01T12:00:00Z", gjson.Get(doc, "timestamp").String())
	assert.Equal(t, "both variants", gjson.Get((*lines)[3], "note").String())
}

func TestIssues_IndexNothing(t *testing.T) {
	es, lines := fakeES(t, http.StatusOK, `{}`)
	err := NewIssues(es, "custom").Index(context.Background(), "300001234567", source.SystemEBS, nil)
	assert.NoError(t, err)
	assert.Empty(t, *lines)
}

func TestIssues_IndexErrors(t *testing.T) {
	es, _ := fakeES(t, http.StatusInternalServerError, `{"error":"boom"}`)
	err := NewIssues(es, "").Index(context.Background(), "300001234567", source.SystemEBS, testIssues())
	assert.Error(t, err)

	es, _ = fakeES(t, http.StatusOK,
		`{"errors":true,"items":[{"index":{"status":201}},{"index":{"status":400,"error":{"type":"mapper_parsing_exception","reason":"bad kind"}}}]}`)
	err = NewIssues(es, "").Index(context.Background(), "300001234567", source.SystemEBS, testIssues())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mapper_parsing_exception")
}
