package fetch

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/samvad-hq/samvad-request/pkg/httpclient"
)

// Params are the per-call options handed to a Transport.
type Params struct {
	Method  string
	Headers map[string]string
	Query   map[string]any
	Body    any
}

// Resp carries the response metadata of a Reply.
type Resp struct {
	Status int
	Header http.Header
}

// Reply is a transport result. Data resolves the decoded payload on demand.
type Reply struct {
	Resp Resp
	Data func(ctx context.Context) (any, error)
}

// Transport performs the network call. With fullResponse set the Reply
// carries the response metadata next to the payload.
type Transport interface {
	Fetch(ctx context.Context, url string, params Params, fullResponse bool) (*Reply, error)
}

// HTTPTransport is the default Transport on top of an httpclient.Client.
type HTTPTransport struct {
	client  httpclient.Client
	baseURL string
}

// NewHTTPTransport returns a transport resolving relative URLs against baseURL.
func NewHTTPTransport(client httpclient.Client, baseURL string) *HTTPTransport {
	return &HTTPTransport{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// Fetch implements Transport.
func (t *HTTPTransport) Fetch(ctx context.Context, url string, params Params, fullResponse bool) (*Reply, error) {
	req := httpclient.Request{
		Method:  params.Method,
		URL:     t.resolve(url),
		Headers: params.Headers,
		Query:   httpclient.EncodeQuery(params.Query),
	}
	if params.Method != http.MethodGet {
		req.Body = params.Body
	}

	resp, err := t.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	body := resp.Body()
	reply := &Reply{
		Data: func(context.Context) (any, error) {
			var payload any
			if err := json.Unmarshal(body, &payload); err != nil {
				return nil, err
			}
			return payload, nil
		},
	}
	if fullResponse {
		reply.Resp = Resp{Status: resp.StatusCode(), Header: resp.Header()}
	}
	return reply, nil
}

func (t *HTTPTransport) resolve(url string) string {
	if t.baseURL == "" || strings.Contains(url, "://") {
		return url
	}
	return t.baseURL + "/" + strings.TrimLeft(url, "/")
}
