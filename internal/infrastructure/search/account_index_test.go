package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/vidstream-accounts/internal/domain/entity"
)

type recorded struct {
	method string
	path   string
	body   string
}

func newTestIndex(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*AccountIndex, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		calls = append(calls, recorded{method: r.Method, path: r.URL.Path, body: string(b)})
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewAccountIndex(es, "accounts"), &calls
}

func TestAccountIndex_Index(t *testing.T) {
	idx, calls := newTestIndex(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})

	err := idx.Index(context.Background(), entity.PublicAccount{ID: "u1", Username: "ab", Fullname: "A B"})
	require.NoError(t, err)
	require.Len(t, *calls, 1)
	c := (*calls)[0]
	assert.Equal(t, http.MethodPut, c.method)
	assert.Equal(t, "/accounts/_doc/u1", c.path)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(c.body), &doc))
	assert.Equal(t, "ab", doc["username"])
	assert.NotContains(t, doc, "password")
}

func TestAccountIndex_IndexErrorStatus(t *testing.T) {
	idx, _ := newTestIndex(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad"}`))
	})

	require.Error(t, idx.Index(context.Background(), entity.PublicAccount{ID: "u1"}))
}

func TestAccountIndex_Search(t *testing.T) {
	idx, calls := newTestIndex(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"hits":{"hits":[
			{"_id":"u1","_source":{"id":"u1","username":"ab","fullname":"A B"}},
			{"_id":"u2","_source":{"username":"abc"}}
		]}}`))
	})

	res, err := idx.Search(context.Background(), "ab", 5)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "u1", res[0].ID)
	assert.Equal(t, "u2", res[1].ID)

	c := (*calls)[0]
	assert.True(t, strings.HasSuffix(c.path, "/accounts/_search"), c.path)
	assert.Contains(t, c.body, `"size":5`)
	assert.Contains(t, c.body, `"query":"ab"`)
}

func TestAccountIndex_Disabled(t *testing.T) {
	var idx *AccountIndex
	require.NoError(t, idx.Index(context.Background(), entity.PublicAccount{ID: "x"}))
	res, err := NewAccountIndex(nil, "accounts").Search(context.Background(), "q", 1)
	require.NoError(t, err)
	assert.Empty(t, res)
}
