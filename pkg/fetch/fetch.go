// Package fetch implements the functional request pipeline: stateless calls
// that read the token straight from the credential store, reject error
// statuses, and unwrap the "data" field of the payload.
//
// Unlike the interceptor pipeline, fetch does not enforce the environment
// guard.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/samvad-hq/samvad-request/internal/logger"
	"github.com/samvad-hq/samvad-request/pkg/credential"
	"github.com/samvad-hq/samvad-request/pkg/httpclient"
	"github.com/samvad-hq/samvad-request/pkg/notify"
	"github.com/samvad-hq/samvad-request/pkg/status"
)

const (
	ContentTypeJSON     = "application/json;charset=utf-8"
	DefaultNotFoundPath = "/NotFound"
)

var (
	errNilReply   = errors.New("transport returned no reply")
	errNilPayload = errors.New("response payload is empty")
)

// Deps are the collaborators of a Client.
type Deps struct {
	Transport    Transport
	Credentials  credential.Source
	Translator   *status.Translator
	Navigator    notify.Navigator
	Logger       logger.Logger
	NotFoundPath string
}

// Client issues functional-pipeline calls. It holds no per-call state.
type Client struct {
	transport    Transport
	credentials  credential.Source
	translator   *status.Translator
	navigator    notify.Navigator
	log          logger.Logger
	notFoundPath string
}

// New returns a Client. Transport is required.
func New(deps Deps) (*Client, error) {
	if deps.Transport == nil {
		return nil, fmt.Errorf("fetch transport is required")
	}
	c := &Client{
		transport:    deps.Transport,
		credentials:  deps.Credentials,
		translator:   deps.Translator,
		navigator:    deps.Navigator,
		log:          logger.Ensure(deps.Logger),
		notFoundPath: deps.NotFoundPath,
	}
	if c.credentials == nil {
		c.credentials = credential.SourceFunc(func() string { return "" })
	}
	if c.translator == nil {
		c.translator = status.Must(status.DefaultLocale)
	}
	if c.navigator == nil {
		c.navigator = notify.Nop{}
	}
	if c.notFoundPath == "" {
		c.notFoundPath = DefaultNotFoundPath
	}
	return c, nil
}

// Get issues a GET with query parameters passed to the transport.
func (c *Client) Get(ctx context.Context, url string, query map[string]any) (any, error) {
	return c.dispatch(ctx, url, http.MethodGet, query, nil)
}

// Post issues a POST with body.
func (c *Client) Post(ctx context.Context, url string, body any) (any, error) {
	return c.dispatch(ctx, url, http.MethodPost, nil, body)
}

// Put issues a PUT with body.
func (c *Client) Put(ctx context.Context, url string, body any) (any, error) {
	return c.dispatch(ctx, url, http.MethodPut, nil, body)
}

// Delete issues a DELETE with body.
func (c *Client) Delete(ctx context.Context, url string, body any) (any, error) {
	return c.dispatch(ctx, url, http.MethodDelete, nil, body)
}

func (c *Client) dispatch(ctx context.Context, url, method string, query map[string]any, body any) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	token := c.credentials.Token()
	params := Params{
		Method: method,
		Headers: map[string]string{
			"Content-Type":  ContentTypeJSON,
			"Authorization": "Bearer " + token,
		},
	}
	if method == http.MethodGet {
		params.Query = query
	} else {
		url = httpclient.AppendQuery(url, query)
		params.Body = body
	}

	reply, err := c.transport.Fetch(ctx, url, params, true)
	if err != nil {
		return nil, c.fail(method, url, err)
	}
	if reply == nil {
		return nil, c.fail(method, url, errNilReply)
	}

	if st := reply.Resp.Status; st > http.StatusBadRequest {
		if st == http.StatusNotFound {
			c.navigator.Redirect(c.notFoundPath)
		}
		serr := &StatusError{Status: st, Message: c.translator.PlainMessage(st)}
		c.log.WarnObj("fetch rejected", "fetch_status", map[string]any{
			"method": method,
			"url":    url,
			"status": st,
			"error":  serr.Error(),
		})
		return nil, serr
	}

	if reply.Data == nil {
		return nil, c.fail(method, url, errNilPayload)
	}
	payload, err := reply.Data(ctx)
	if err != nil {
		return nil, c.fail(method, url, err)
	}
	if payload == nil {
		return nil, c.fail(method, url, errNilPayload)
	}
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, nil
	}
	return obj["data"], nil
}

func (c *Client) fail(method, url string, err error) error {
	derr := &DispatchError{Err: err}
	c.log.WarnObj("fetch failed", "fetch_error", map[string]any{
		"method": method,
		"url":    url,
		"error":  derr.Error(),
	})
	return derr
}

// As re-decodes a dispatched result into T.
func As[T any](v any, err error) (T, error) {
	var out T
	if err != nil {
		return out, err
	}
	if v == nil {
		return out, nil
	}
	if typed, ok := v.(T); ok {
		return typed, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return out, fmt.Errorf("encode result: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode result: %w", err)
	}
	return out, nil
}
