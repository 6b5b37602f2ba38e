package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/vidstream-accounts/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// AccountIndex keeps a searchable copy of public account profiles.
type AccountIndex struct {
	ES        *elasticsearch.Client
	IndexName string
}

func NewAccountIndex(es *elasticsearch.Client, index string) *AccountIndex {
	return &AccountIndex{ES: es, IndexName: index}
}

func (x *AccountIndex) enabled() bool { return x != nil && x.ES != nil && x.IndexName != "" }

// Index upserts the account document under its id.
func (x *AccountIndex) Index(ctx context.Context, a entity.PublicAccount) error {
	if !x.enabled() {
		return nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.IndexName, DocumentID: a.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return fmt.Errorf("es index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

// Search runs a multi_match over username, fullname and email.
func (x *AccountIndex) Search(ctx context.Context, q string, size int) ([]entity.PublicAccount, error) {
	if !x.enabled() {
		return []entity.PublicAccount{}, nil
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"username^3", "fullname^2", "email"},
				"type":   "bool_prefix",
			},
		},
		"size": size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.ES.Search(
		x.ES.Search.WithContext(c),
		x.ES.Search.WithIndex(x.IndexName),
		x.ES.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, fmt.Errorf("es search: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, errors.New("es search: " + res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string               `json:"_id"`
				Source entity.PublicAccount `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode es response: %w", err)
	}

	out := make([]entity.PublicAccount, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		doc := h.Source
		if doc.ID == "" {
			doc.ID = h.ID
		}
		out = append(out, doc)
	}
	return out, nil
}
