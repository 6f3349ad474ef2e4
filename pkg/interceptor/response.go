package interceptor

import (
	"encoding/json"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/samvad-hq/samvad-request/pkg/httpclient"
)

// Response is the raw response handed back to callers.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

// Failure describes a response with an error status.
type Failure struct {
	StatusCode int
	Message    string
}

func (f *Failure) Error() string { return f.Message }

// Envelope is the normalized result of a call that produced a response.
type Envelope struct {
	// Data is the parsed body on success, or the raw bytes for blob requests.
	Data any
	// Response is the raw response. It is always set.
	Response *Response
	// Failure is set when the response carried an error status.
	Failure *Failure
}

// Failed reports whether the call resolved with an error status.
func (e *Envelope) Failed() bool { return e != nil && e.Failure != nil }

func rawResponse(resp *resty.Response) *Response {
	return &Response{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		Header:     resp.Header(),
		Body:       resp.Body(),
	}
}

func (p *Pipeline) onSuccess(req Request, resp *resty.Response) (*Envelope, error) {
	raw := rawResponse(resp)
	if req.ResponseType == ResponseBlob {
		return &Envelope{Data: raw.Body, Response: raw}, nil
	}

	data, err := normalizeBody(raw.Body)
	if err != nil {
		return nil, err
	}
	return &Envelope{Data: data, Response: raw}, nil
}

// normalizeBody decodes a JSON body. A body that decodes to a JSON string is
// decoded once more, tolerating backends that double encode; an empty body or
// empty string is returned as "".
func normalizeBody(body []byte) (any, error) {
	if len(body) == 0 {
		return "", nil
	}

	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, &ParseError{Snippet: httpclient.Snippet("", body), Err: err}
	}

	s, ok := v.(string)
	if !ok {
		return v, nil
	}
	if s == "" {
		return "", nil
	}

	var inner any
	if err := json.Unmarshal([]byte(s), &inner); err != nil {
		return nil, &ParseError{Snippet: httpclient.Snippet("", []byte(s)), Err: err}
	}
	return inner, nil
}

// onFailure maps the status to a message, runs the side effects, and
// resolves with the raw response.
func (p *Pipeline) onFailure(method string, req Request, resp *resty.Response) *Envelope {
	raw := rawResponse(resp)
	failure := &Failure{
		StatusCode: raw.StatusCode,
		Message:    p.translator.Message(raw.StatusCode),
	}

	if raw.StatusCode == http.StatusNotFound {
		p.navigator.Redirect(p.notFoundPath)
	}

	silent := p.silent || p.blocked()
	p.log.WarnObj("request failed", "request_failure", map[string]any{
		"method":  method,
		"path":    req.Path,
		"status":  raw.StatusCode,
		"message": failure.Message,
		"body":    httpclient.Snippet(raw.Header.Get("Content-Type"), raw.Body),
		"silent":  silent,
	})
	if !silent {
		p.notifier.Error(failure.Message)
	}

	return &Envelope{Response: raw, Failure: failure}
}
