// Package search mirrors forum resources into Elasticsearch and queries them.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
)

var ErrDisabled = errors.New("search is not configured")

type Document struct {
	Kind        string `json:"kind"`
	EntityID    uint   `json:"entityId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CountryID   uint   `json:"countryId,omitempty"`
	CityID      uint   `json:"cityId,omitempty"`
}

func (d Document) ID() string {
	return DocID(d.Kind, d.EntityID)
}

func DocID(kind string, id uint) string {
	return fmt.Sprintf("%s-%d", kind, id)
}

type Results struct {
	Total int64      `json:"total"`
	Items []Document `json:"items"`
}

type Index interface {
	Index(ctx context.Context, doc Document) error
	Delete(ctx context.Context, kind string, id uint) error
	Search(ctx context.Context, query string, from, size int) (*Results, error)
}

// Nop accepts writes and refuses queries.
type Nop struct{}

func (Nop) Index(context.Context, Document) error      { return nil }
func (Nop) Delete(context.Context, string, uint) error { return nil }
func (Nop) Search(context.Context, string, int, int) (*Results, error) {
	return nil, ErrDisabled
}

type Config struct {
	URL      string
	User     string
	Password string
	Index    string
	// Transport is only set by tests.
	Transport http.RoundTripper
}

func NewClient(cfg Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch info: %s: %s", res.Status(), body)
	}
	return client, nil
}

type ESIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewESIndex(es *elasticsearch.Client, index string) *ESIndex {
	return &ESIndex{es: es, index: index}
}

func (x *ESIndex) Index(ctx context.Context, doc Document) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	res, err := x.es.Index(
		x.index,
		&buf,
		x.es.Index.WithContext(ctx),
		x.es.Index.WithDocumentID(doc.ID()),
	)
	if err != nil {
		return fmt.Errorf("index %s: %w", doc.ID(), err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index %s: %s", doc.ID(), res.Status())
	}
	return nil
}

func (x *ESIndex) Delete(ctx context.Context, kind string, id uint) error {
	docID := DocID(kind, id)
	res, err := x.es.Delete(x.index, docID, x.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete %s: %w", docID, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete %s: %s", docID, res.Status())
	}
	return nil
}

func (x *ESIndex) Search(ctx context.Context, query string, from, size int) (*Results, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := x.es.Search(
		x.es.Search.WithContext(ctx),
		x.es.Search.WithIndex(x.index),
		x.es.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source Document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := &Results{Total: r.Hits.Total.Value, Items: make([]Document, 0, len(r.Hits.Hits))}
	for _, hit := range r.Hits.Hits {
		out.Items = append(out.Items, hit.Source)
	}
	return out, nil
}
