// internal/store/issues.go
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"caab-workers/internal/mapping"
	"caab-workers/internal/mapping/source"

	"github.com/elastic/go-elasticsearch/v8"
)

// IssueIndexName is the Elasticsearch index holding data-quality issues.
const IssueIndexName = "caab-data-quality"

// IssueDocument is one indexed data-quality issue.
type IssueDocument struct {
	CaseReference string            `json:"caseReference"`
	Source        source.System     `json:"source"`
	Kind          mapping.IssueKind `json:"kind"`
	Path          string            `json:"path"`
	Value         string            `json:"value,omitempty"`
	Note          string            `json:"note,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}

// Issues writes mapping issues to Elasticsearch.
type Issues struct {
	es    *elasticsearch.Client
	index string
	now   func() time.Time
}

func NewIssues(es *elasticsearch.Client, index string) *Issues {
	if index == "" {
		index = IssueIndexName
	}
	return &Issues{es: es, index: index, now: func() time.Time { return time.Now().UTC() }}
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		Status int `json:"status"`
		Error  struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"items"`
}

// Index bulk-indexes the issues of one mapping run. It is a no-op for an empty slice.
func (ix *Issues) Index(ctx context.Context, caseRef string, system source.System, issues []mapping.Issue) error {
	if len(issues) == 0 {
		return nil
	}

	var buf bytes.Buffer
	ts := ix.now()
	enc := json.NewEncoder(&buf)
	for _, is := range issues {
		if err := enc.Encode(map[string]interface{}{"index": map[string]string{"_index": ix.index}}); err != nil {
			return err
		}
		doc := IssueDocument{
			CaseReference: caseRef,
			Source:        system,
			Kind:          is.Kind,
			Path:          is.Path,
			Value:         is.Value,
			Note:          is.Note,
			Timestamp:     ts,
		}
		if err := enc.Encode(doc); err != nil {
			return err
		}
	}

	res, err := ix.es.Bulk(&buf, ix.es.Bulk.WithContext(ctx), ix.es.Bulk.WithIndex(ix.index))
	if err != nil {
		return fmt.Errorf("index issues for %s: %w", caseRef, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index issues for %s: %s: %s", caseRef, res.Status(), body)
	}

	var br bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&br); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}
	if br.Errors {
		for _, item := range br.Items {
			for _, r := range item {
				if r.Status >= 300 {
					return fmt.Errorf("index issues for %s: %s: %s", caseRef, r.Error.Type, r.Error.Reason)
				}
			}
		}
	}
	return nil
}
