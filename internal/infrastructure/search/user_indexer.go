// Package search keeps the Elasticsearch user directory projection.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/samber/oops"

	"github.com/loopers/commerce-api/internal/application"
)

// UserIndexer writes DirectoryEntry documents keyed by user id.
type UserIndexer struct {
	es    *elasticsearch.Client
	index string
}

var _ application.UserIndexer = (*UserIndexer)(nil)

func NewUserIndexer(es *elasticsearch.Client, index string) *UserIndexer {
	return &UserIndexer{es: es, index: index}
}

type userDocument struct {
	ID        int64  `json:"id"`
	LoginID   string `json:"login_id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func (i *UserIndexer) IndexUser(ctx context.Context, e application.DirectoryEntry) error {
	b, err := json.Marshal(userDocument{
		ID:        e.UserID,
		LoginID:   e.LoginID,
		Name:      e.MaskedName,
		CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: e.UpdatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return oops.Code("ES_INDEX_FAILED").Wrap(err)
	}

	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: strconv.FormatInt(e.UserID, 10),
		Body:       bytes.NewReader(b),
		Refresh:    "false",
	}
	res, err := req.Do(ctx, i.es)
	if err != nil {
		return oops.Code("ES_INDEX_FAILED").With("user_id", e.UserID).Wrap(err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return oops.Code("ES_INDEX_FAILED").
			With("user_id", e.UserID).
			With("status", res.StatusCode).
			Errorf("index response %s: %s", res.Status(), body)
	}
	return nil
}
