// Package interceptor implements the interceptor request pipeline: a reusable
// resty client whose request hooks enforce the environment guard and inject
// credentials, and whose responses are normalized into an Envelope.
//
// Failed responses are not returned as errors. The user is notified and the
// raw response is handed back inside the Envelope; callers check Failed.
package interceptor

import (
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/samvad-hq/samvad-request/internal/logger"
	"github.com/samvad-hq/samvad-request/pkg/credential"
	"github.com/samvad-hq/samvad-request/pkg/notify"
	"github.com/samvad-hq/samvad-request/pkg/status"
)

const (
	DefaultOrigin       = "http://localhost"
	DefaultBasePath     = "/api"
	DefaultTimeout      = 10 * time.Second
	DefaultNotFoundPath = "/NotFound"

	// ContentTypeJSON is sent on every authenticated request.
	ContentTypeJSON = "application/json;charset=utf-8"
)

// Blocker reports whether outbound calls must be suppressed.
type Blocker interface {
	IsBlocked() bool
}

// Deps are the collaborators the pipeline calls into.
type Deps struct {
	Credentials credential.Source
	Guard       Blocker
	Translator  *status.Translator
	Notifier    notify.Notifier
	Navigator   notify.Navigator
	Logger      logger.Logger
}

type settings struct {
	baseURL         string
	timeout         time.Duration
	withCredentials bool
	silent          bool
	notFoundPath    string
	clientOpts      []func(*resty.Client)
}

// Option overrides a construction default. Options run after the defaults.
type Option func(*settings)

// WithBaseURL sets the base URL every request path is resolved against.
func WithBaseURL(u string) Option {
	return func(s *settings) { s.baseURL = strings.TrimRight(u, "/") }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

// WithCredentials toggles cookie passing between requests.
func WithCredentials(enabled bool) Option {
	return func(s *settings) { s.withCredentials = enabled }
}

// WithSilentFailures suppresses failure notifications.
func WithSilentFailures(silent bool) Option {
	return func(s *settings) { s.silent = silent }
}

// WithNotFoundPath sets where a 404 navigates to.
func WithNotFoundPath(path string) Option {
	return func(s *settings) { s.notFoundPath = path }
}

// WithClientOption gives direct access to the underlying resty client.
func WithClientOption(fn func(*resty.Client)) Option {
	return func(s *settings) {
		if fn != nil {
			s.clientOpts = append(s.clientOpts, fn)
		}
	}
}

// Pipeline is a configured client instance. It is safe for concurrent use.
type Pipeline struct {
	client       *resty.Client
	credentials  credential.Source
	guard        Blocker
	translator   *status.Translator
	notifier     notify.Notifier
	navigator    notify.Navigator
	log          logger.Logger
	silent       bool
	notFoundPath string
}

// New builds a pipeline from deps. Nil collaborators get inert defaults.
func New(deps Deps, opts ...Option) *Pipeline {
	s := settings{
		baseURL:         DefaultOrigin + DefaultBasePath,
		timeout:         DefaultTimeout,
		withCredentials: true,
		notFoundPath:    DefaultNotFoundPath,
	}
	for _, opt := range opts {
		opt(&s)
	}

	p := &Pipeline{
		credentials:  deps.Credentials,
		guard:        deps.Guard,
		translator:   deps.Translator,
		notifier:     deps.Notifier,
		navigator:    deps.Navigator,
		log:          logger.Ensure(deps.Logger),
		silent:       s.silent,
		notFoundPath: s.notFoundPath,
	}
	if p.credentials == nil {
		p.credentials = credential.SourceFunc(func() string { return "" })
	}
	if p.translator == nil {
		p.translator = status.Must(status.DefaultLocale)
	}
	if p.notifier == nil {
		p.notifier = notify.Nop{}
	}
	if p.navigator == nil {
		p.navigator = notify.Nop{}
	}

	client := resty.New().
		SetBaseURL(s.baseURL).
		SetTimeout(s.timeout).
		SetLogger(restyLogger{log: p.log})
	if !s.withCredentials {
		client.SetCookieJar(nil)
	}
	for _, fn := range s.clientOpts {
		fn(client)
	}
	client.OnBeforeRequest(p.beforeRequest)

	p.client = client
	return p
}

// Client exposes the underlying resty client.
func (p *Pipeline) Client() *resty.Client { return p.client }

func (p *Pipeline) blocked() bool {
	return p.guard != nil && p.guard.IsBlocked()
}
