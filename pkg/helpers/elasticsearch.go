package helpers

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/samber/oops"
)

// NewESClient creates an Elasticsearch client with sane defaults and optional basic auth.
func NewESClient(addrs []string, username, password string) (*elasticsearch.Client, error) {
	return NewESClientWithTransport(addrs, username, password, &http.Transport{
		MaxIdleConnsPerHost:   10,
		ResponseHeaderTimeout: 5 * time.Second,
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
	})
}

// NewESClientWithTransport is NewESClient with a caller supplied transport.
func NewESClientWithTransport(addrs []string, username, password string, rt http.RoundTripper) (*elasticsearch.Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addrs,
		Username:  username,
		Password:  password,
		Transport: rt,
	})
	if err != nil {
		return nil, oops.Code("ES_CLIENT_FAILED").With("addresses", addrs).Wrap(err)
	}
	return es, nil
}
