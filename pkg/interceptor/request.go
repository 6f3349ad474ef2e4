package interceptor

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/samvad-hq/samvad-request/pkg/guard"
	"github.com/samvad-hq/samvad-request/pkg/httpclient"
	"github.com/samvad-hq/samvad-request/pkg/notify"
)

// ResponseType hints how the response body is to be treated.
type ResponseType string

const (
	ResponseJSON ResponseType = "json"
	ResponseBlob ResponseType = "blob"
)

// Request describes a single call. Path is resolved against the base URL.
type Request struct {
	Method       string
	Path         string
	Query        map[string]any
	Body         any
	Headers      map[string]string
	ResponseType ResponseType
}

// beforeRequest is the request interceptor registered on the resty client.
func (p *Pipeline) beforeRequest(_ *resty.Client, r *resty.Request) error {
	if p.blocked() {
		p.notifier.Create(guard.Warning, notify.MessageOptions{Type: notify.TypeWarning, Closable: true})
		return &BlockedError{Warning: guard.Warning}
	}
	if token := p.credentials.Token(); token != "" {
		r.SetHeader("Content-Type", ContentTypeJSON)
		r.SetHeader("Authorization", "Bearer "+token)
	}
	return nil
}

// Do issues req and normalizes the outcome. A non-nil error means no usable
// response exists: the call was blocked, the transport failed, or a
// successful body could not be parsed.
func (p *Pipeline) Do(ctx context.Context, req Request) (*Envelope, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}
	if ctx == nil {
		ctx = context.Background()
	}

	r := p.client.R().SetContext(ctx)
	if len(req.Headers) > 0 {
		r.SetHeaders(req.Headers)
	}
	if q := httpclient.EncodeQuery(req.Query); len(q) > 0 {
		r.SetQueryParamsFromValues(q)
	}
	if req.Body != nil {
		r.SetBody(req.Body)
	}

	resp, err := r.Execute(method, req.Path)
	if err != nil {
		p.logRequestError(method, req.Path, err)
		return nil, err
	}

	if resp.IsError() {
		return p.onFailure(method, req, resp), nil
	}
	return p.onSuccess(req, resp)
}

// Get issues a GET with query parameters.
func (p *Pipeline) Get(ctx context.Context, path string, query map[string]any) (*Envelope, error) {
	return p.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post issues a POST with a JSON body.
func (p *Pipeline) Post(ctx context.Context, path string, body any) (*Envelope, error) {
	return p.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put issues a PUT with a JSON body.
func (p *Pipeline) Put(ctx context.Context, path string, body any) (*Envelope, error) {
	return p.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body})
}

// Delete issues a DELETE with an optional JSON body.
func (p *Pipeline) Delete(ctx context.Context, path string, body any) (*Envelope, error) {
	return p.Do(ctx, Request{Method: http.MethodDelete, Path: path, Body: body})
}

// Download issues a GET whose body is returned as raw bytes.
func (p *Pipeline) Download(ctx context.Context, path string, query map[string]any) (*Envelope, error) {
	return p.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query, ResponseType: ResponseBlob})
}

func (p *Pipeline) logRequestError(method, path string, err error) {
	fields := map[string]any{
		"method": method,
		"path":   path,
		"error":  err.Error(),
	}
	if errors.Is(err, ErrBlocked) {
		p.log.DebugObj("request blocked by environment guard", "request_blocked", fields)
		return
	}
	p.log.WarnObj("request transport failed", "request_error", fields)
}
