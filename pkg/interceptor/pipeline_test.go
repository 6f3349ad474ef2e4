package interceptor

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/samvad-hq/samvad-request/pkg/credential"
	"github.com/samvad-hq/samvad-request/pkg/guard"
	"github.com/samvad-hq/samvad-request/pkg/notify"
	"github.com/samvad-hq/samvad-request/pkg/status"
)

type fixture struct {
	srv      *httptest.Server
	hits     atomic.Int32
	notifier *notify.Recorder
	nav      *notify.Recorder
}

func newFixture(t *testing.T, handler http.HandlerFunc) *fixture {
	t.Helper()
	f := &fixture{notifier: &notify.Recorder{}, nav: &notify.Recorder{}}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fixture) pipeline(token string, opts ...Option) *Pipeline {
	src := credential.SourceFunc(func() string { return token })
	opts = append([]Option{WithBaseURL(f.srv.URL + DefaultBasePath)}, opts...)
	return New(Deps{
		Credentials: src,
		Guard:       guard.New(src, guard.DefaultSandboxToken),
		Translator:  status.Must(status.LocaleZhCN),
		Notifier:    f.notifier,
		Navigator:   f.nav,
	}, opts...)
}

func TestPipelineInjectsCredentials(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/users" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer abc" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != ContentTypeJSON {
			t.Errorf("Content-Type = %q", got)
		}
		if got := r.URL.Query().Get("page"); got != "2" {
			t.Errorf("page = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"id":1},"code":0}`))
	})

	env, err := f.pipeline("abc").Get(context.Background(), "/users", map[string]any{"page": 2})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if env.Failed() {
		t.Fatalf("unexpected failure %+v", env.Failure)
	}
	want := map[string]any{"data": map[string]any{"id": float64(1)}, "code": float64(0)}
	if !reflect.DeepEqual(env.Data, want) {
		t.Fatalf("expected whole body, got %#v", env.Data)
	}
}

func TestPipelineSkipsCredentialsWithoutToken(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("expected no Authorization header, got %q", got)
		}
		_, _ = w.Write([]byte(`[]`))
	})

	if _, err := f.pipeline("").Get(context.Background(), "/public", nil); err != nil {
		t.Fatalf("Get: %v", err)
	}
}

func TestPipelineBlockedBySandboxToken(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	env, err := f.pipeline(guard.DefaultSandboxToken).Post(context.Background(), "/orders", map[string]any{"id": 1})
	if env != nil {
		t.Fatalf("expected no envelope, got %#v", env)
	}
	var blocked *BlockedError
	if !errors.As(err, &blocked) || !errors.Is(err, ErrBlocked) {
		t.Fatalf("expected BlockedError, got %v", err)
	}
	if blocked.Warning != guard.Warning {
		t.Fatalf("unexpected warning %q", blocked.Warning)
	}
	if hits := f.hits.Load(); hits != 0 {
		t.Fatalf("transport must not be invoked, got %d hits", hits)
	}

	entries := f.notifier.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected one warning, got %#v", entries)
	}
	if e := entries[0]; e.Message != guard.Warning || e.Options.Type != notify.TypeWarning || !e.Options.Closable {
		t.Fatalf("unexpected warning entry %#v", e)
	}
}

func TestPipelineParsesStringEncodedJSON(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/double":
			_, _ = w.Write([]byte(`"{\"data\":5}"`))
		case "/api/empty-string":
			_, _ = w.Write([]byte(`""`))
		default:
			w.WriteHeader(http.StatusOK)
		}
	})
	p := f.pipeline("abc")

	env, err := p.Get(context.Background(), "/double", nil)
	if err != nil {
		t.Fatalf("Get double: %v", err)
	}
	if !reflect.DeepEqual(env.Data, map[string]any{"data": float64(5)}) {
		t.Fatalf("expected parsed object, got %#v", env.Data)
	}

	for _, path := range []string{"/empty-string", "/empty"} {
		env, err := p.Get(context.Background(), path, nil)
		if err != nil {
			t.Fatalf("Get %s: %v", path, err)
		}
		if env.Data != "" {
			t.Fatalf("%s: expected empty string, got %#v", path, env.Data)
		}
	}
}

func TestPipelinePropagatesMalformedJSON(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/text" {
			_, _ = w.Write([]byte(`not json`))
			return
		}
		_, _ = w.Write([]byte(`"{broken"`))
	})
	p := f.pipeline("abc")

	for _, path := range []string{"/text", "/broken"} {
		_, err := p.Get(context.Background(), path, nil)
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("%s: expected ParseError, got %v", path, err)
		}
	}
}

func TestPipelineReturnsBlobUntouched(t *testing.T) {
	payload := []byte{'%', 'P', 'D', 'F', 0x00, 0x01, 0xff}
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(payload)
	})

	env, err := f.pipeline("abc").Download(context.Background(), "/report", nil)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	got, ok := env.Data.([]byte)
	if !ok || !bytes.Equal(got, payload) {
		t.Fatalf("expected raw bytes, got %#v", env.Data)
	}
}

func TestPipelineResolvesFailuresWithRawResponse(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"db down"}`, http.StatusInternalServerError)
	})

	env, err := f.pipeline("abc").Put(context.Background(), "/users/1", map[string]any{"name": "n"})
	if err != nil {
		t.Fatalf("failures must resolve, got error %v", err)
	}
	if !env.Failed() || env.Failure.StatusCode != 500 || env.Failure.Message != "服务器端出错" {
		t.Fatalf("unexpected failure %+v", env.Failure)
	}
	if env.Response.StatusCode != 500 || !bytes.Contains(env.Response.Body, []byte("db down")) {
		t.Fatalf("expected raw response, got %+v", env.Response)
	}

	entries := f.notifier.Entries()
	if len(entries) != 1 || entries[0].Message != "服务器端出错" || entries[0].Options.Type != notify.TypeError {
		t.Fatalf("expected one error notification, got %#v", entries)
	}
	if len(f.nav.Redirects()) != 0 {
		t.Fatalf("unexpected redirect %v", f.nav.Redirects())
	}
}

func TestPipelineTreatsStatus400AsFailure(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	env, err := f.pipeline("abc").Get(context.Background(), "/users", nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !env.Failed() || env.Failure.StatusCode != http.StatusBadRequest || env.Failure.Message != "错误请求" {
		t.Fatalf("expected 400 failure, got %+v", env.Failure)
	}
	entries := f.notifier.Entries()
	if len(entries) != 1 || entries[0].Message != "错误请求" || entries[0].Options.Type != notify.TypeError {
		t.Fatalf("expected one error notification, got %#v", entries)
	}
}

func TestPipelineRedirectsOnNotFound(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	env, err := f.pipeline("abc").Delete(context.Background(), "/users/9", nil)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if env.Failure.Message != "请求错误,未找到该资源" {
		t.Fatalf("unexpected message %q", env.Failure.Message)
	}
	redirects := f.nav.Redirects()
	if len(redirects) != 1 || redirects[0] != DefaultNotFoundPath {
		t.Fatalf("expected exactly one redirect to %s, got %v", DefaultNotFoundPath, redirects)
	}
}

func TestPipelineSilentFailures(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	env, err := f.pipeline("abc", WithSilentFailures(true)).Get(context.Background(), "/tea", nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if env.Failure.Message != "连接错误418" {
		t.Fatalf("unexpected default message %q", env.Failure.Message)
	}
	if entries := f.notifier.Entries(); len(entries) != 0 {
		t.Fatalf("silent failures must not notify, got %#v", entries)
	}
}

// flipGuard allows the request and reports blocked once the response arrives.
type flipGuard struct {
	calls atomic.Int32
}

func (g *flipGuard) IsBlocked() bool { return g.calls.Add(1) > 1 }

func TestPipelineSuppressesNotificationWhenGuardTripsDuringCall(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	p := New(Deps{
		Credentials: credential.SourceFunc(func() string { return "abc" }),
		Guard:       &flipGuard{},
		Notifier:    f.notifier,
	}, WithBaseURL(f.srv.URL))

	env, err := p.Get(context.Background(), "/", nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if env.Failure.Message != "网络错误" {
		t.Fatalf("unexpected message %q", env.Failure.Message)
	}
	if entries := f.notifier.Entries(); len(entries) != 0 {
		t.Fatalf("expected no notification, got %#v", entries)
	}
}

func TestPipelinePropagatesTransportErrors(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	env, err := f.pipeline("abc", WithTimeout(20*time.Millisecond)).Get(context.Background(), "/slow", nil)
	if err == nil || env != nil {
		t.Fatalf("expected transport error, got env=%#v err=%v", env, err)
	}
	if errors.Is(err, ErrBlocked) {
		t.Fatalf("timeout must not look like a blocked call")
	}
	if entries := f.notifier.Entries(); len(entries) != 0 {
		t.Fatalf("transport errors must not notify, got %#v", entries)
	}
}

func TestNewAppliesOptionsAfterDefaults(t *testing.T) {
	p := New(Deps{})
	if p.Client().BaseURL != DefaultOrigin+DefaultBasePath {
		t.Fatalf("unexpected default base url %q", p.Client().BaseURL)
	}
	if p.Client().GetClient().Timeout != DefaultTimeout {
		t.Fatalf("unexpected default timeout %v", p.Client().GetClient().Timeout)
	}
	if p.Client().GetClient().Jar == nil {
		t.Fatalf("credentials should be passed by default")
	}

	custom := New(Deps{},
		WithBaseURL("http://backend/v2/"),
		WithTimeout(time.Second),
		WithCredentials(false),
		WithClientOption(func(c *resty.Client) { c.SetHeader("X-Client", "samvad") }),
	)
	if custom.Client().BaseURL != "http://backend/v2" {
		t.Fatalf("unexpected base url %q", custom.Client().BaseURL)
	}
	if custom.Client().GetClient().Timeout != time.Second {
		t.Fatalf("timeout override not applied")
	}
	if custom.Client().GetClient().Jar != nil {
		t.Fatalf("cookie jar should be disabled")
	}
	if custom.Client().Header.Get("X-Client") != "samvad" {
		t.Fatalf("client option not applied")
	}
}
