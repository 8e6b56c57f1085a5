package useragent

import (
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

// NewHTTPClient returns the client used to reach the application server.
// With useHTTP2 the connection speaks HTTP/2 only, which requires https.
func NewHTTPClient(useHTTP2 bool) *http.Client {
	client := &http.Client{Timeout: 30 * time.Second}
	if useHTTP2 {
		client.Transport = &http2.Transport{}
	}
	return client
}
