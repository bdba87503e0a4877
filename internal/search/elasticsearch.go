// Package search maintains the Elasticsearch projection of class
// occurrences used by the public search endpoint. Indexing failures are
// logged and never fail the originating write.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"fitgrid/internal/config"
	"fitgrid/internal/logger"
	"fitgrid/internal/models"
)

type Client struct {
	es    *elasticsearch.Client
	index string
}

func NewClient(cfg config.ElasticsearchConfig) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:  []string{cfg.URL},
		Username:   cfg.Username,
		Password:   cfg.Password,
		MaxRetries: cfg.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("creating elasticsearch client: %w", err)
	}

	client := &Client{es: es, index: cfg.Index}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	if err := client.ensureIndex(ctx); err != nil {
		return nil, err
	}

	logger.Get().Info("connected to elasticsearch", "url", cfg.URL, "index", cfg.Index)
	return client, nil
}

func (c *Client) ensureIndex(ctx context.Context) error {
	exists := esapi.IndicesExistsRequest{Index: []string{c.index}}
	res, err := exists.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("checking index %s: %w", c.index, err)
	}
	defer res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	mapping := `{
		"mappings": {
			"properties": {
				"id":         {"type": "long"},
				"series_id":  {"type": "long"},
				"activity":   {"type": "text"},
				"instructor": {"type": "text"},
				"room":       {"type": "keyword"},
				"start_time": {"type": "date"},
				"end_time":   {"type": "date"},
				"status":     {"type": "keyword"},
				"capacity":   {"type": "integer"}
			}
		}
	}`

	create := esapi.IndicesCreateRequest{
		Index: c.index,
		Body:  bytes.NewReader([]byte(mapping)),
	}
	res, err = create.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("creating index %s: %w", c.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("creating index %s: %s", c.index, res.String())
	}
	return nil
}

// Index writes or overwrites one occurrence document.
func (c *Client) Index(ctx context.Context, doc *models.ClassDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling class document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      c.index,
		DocumentID: strconv.FormatInt(doc.ID, 10),
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("indexing class %d: %w", doc.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("indexing class %d: %s", doc.ID, res.String())
	}
	return nil
}

// Delete removes an occurrence document. Missing documents are fine.
func (c *Client) Delete(ctx context.Context, id int64) error {
	req := esapi.DeleteRequest{
		Index:      c.index,
		DocumentID: strconv.FormatInt(id, 10),
	}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("deleting class %d from index: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("deleting class %d from index: %s", id, res.String())
	}
	return nil
}

// Search runs a fuzzy multi-match over activity and instructor names,
// optionally narrowed to a single day.
func (c *Client) Search(ctx context.Context, text string, day *time.Time) ([]models.ClassDocument, error) {
	query := buildSearchQuery(text, day)
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("marshaling search query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{c.index},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return nil, fmt.Errorf("searching classes: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("searching classes: %s", res.String())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.ClassDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	docs := make([]models.ClassDocument, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		docs = append(docs, hit.Source)
	}
	return docs, nil
}

func buildSearchQuery(text string, day *time.Time) map[string]any {
	must := make([]map[string]any, 0, 2)

	if text != "" {
		must = append(must, map[string]any{
			"multi_match": map[string]any{
				"query":     text,
				"fields":    []string{"activity^2", "instructor"},
				"fuzziness": "AUTO",
			},
		})
	}
	if day != nil {
		dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
		must = append(must, map[string]any{
			"range": map[string]any{
				"start_time": map[string]any{
					"gte": dayStart.Format(time.RFC3339),
					"lt":  dayStart.AddDate(0, 0, 1).Format(time.RFC3339),
				},
			},
		})
	}

	if len(must) == 0 {
		must = append(must, map[string]any{"match_all": map[string]any{}})
	}

	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{"must": must},
		},
		"sort": []map[string]any{
			{"start_time": map[string]any{"order": "asc"}},
		},
		"size": 100,
	}
}
