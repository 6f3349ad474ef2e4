package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/samvad-hq/samvad-request/internal/config"
	"github.com/samvad-hq/samvad-request/internal/logger"
	"github.com/samvad-hq/samvad-request/internal/storage"
	"github.com/samvad-hq/samvad-request/pkg/credential"
	"github.com/samvad-hq/samvad-request/pkg/fetch"
	"github.com/samvad-hq/samvad-request/pkg/guard"
	"github.com/samvad-hq/samvad-request/pkg/httpclient"
	"github.com/samvad-hq/samvad-request/pkg/interceptor"
	"github.com/samvad-hq/samvad-request/pkg/notify"
	"github.com/samvad-hq/samvad-request/pkg/status"
)

const (
	PipelineInterceptor = "interceptor"
	PipelineFetch       = "fetch"
)

// Requester owns the credential store and both request pipelines built on it.
type Requester struct {
	cfg         *config.Config
	log         logger.Logger
	store       storage.Store
	tokens      *credential.Accessor
	fanout      *notify.Fanout
	interceptor *interceptor.Pipeline
	fetch       *fetch.Client
}

// Call is a single request issued through one of the pipelines.
type Call struct {
	Pipeline string
	Method   string
	Path     string
	Query    map[string]any
	Body     any
	Blob     bool
}

// Result is the normalized outcome of a Call.
type Result struct {
	Pipeline string `json:"pipeline"`
	Status   int    `json:"status,omitempty"`
	Failed   bool   `json:"failed"`
	Message  string `json:"message,omitempty"`
	Data     any    `json:"data"`
}

// NewRequester builds the runtime from config.
func NewRequester(ctx context.Context, cfg *config.Config, log logger.Logger) (*Requester, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)
	if ctx == nil {
		ctx = context.Background()
	}

	translator, err := status.Load(cfg.Locale, cfg.MessagesFile)
	if err != nil {
		return nil, fmt.Errorf("load status messages: %w", err)
	}
	log.InfoObj("status messages loaded", "status_meta", map[string]any{
		"locale": translator.Locale(),
		"file":   cfg.MessagesFile,
	})

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type": cfg.StorageType,
		"path": cfg.BBoltPath,
	})

	var notifier notify.Notifier = notify.NewLog(log)
	var fanout *notify.Fanout
	if strings.TrimSpace(cfg.SinksFile) != "" {
		fanout, err = buildFanout(ctx, cfg, log)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("build notification sinks: %w", err), store.Close())
		}
		notifier = notify.Multi{notifier, fanout}
	}
	navigator := notify.NewLog(log)

	tokens := credential.NewAccessor(store, cfg.TokenKey, log)
	pipeline := interceptor.New(interceptor.Deps{
		Credentials: tokens,
		Guard:       guard.New(tokens, cfg.SandboxToken),
		Translator:  translator,
		Notifier:    notifier,
		Navigator:   navigator,
		Logger:      log,
	},
		interceptor.WithBaseURL(cfg.BaseURL()),
		interceptor.WithTimeout(cfg.Timeout),
		interceptor.WithCredentials(cfg.WithCredentials),
		interceptor.WithSilentFailures(cfg.SilentFailures),
		interceptor.WithNotFoundPath(cfg.NotFoundPath),
	)

	fetcher, err := fetch.New(fetch.Deps{
		Transport:    fetch.NewHTTPTransport(httpclient.NewRestyClient(cfg.Timeout), cfg.BaseURL()),
		Credentials:  credential.StoreSource{Store: store, Key: cfg.TokenKey, Log: log},
		Translator:   translator,
		Navigator:    navigator,
		Logger:       log,
		NotFoundPath: cfg.NotFoundPath,
	})
	if err != nil {
		return nil, errors.Join(err, fanout.Close(), store.Close())
	}

	return &Requester{
		cfg:         cfg,
		log:         log,
		store:       store,
		tokens:      tokens,
		fanout:      fanout,
		interceptor: pipeline,
		fetch:       fetcher,
	}, nil
}

func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*notify.Fanout, error) {
	sinkCfgs, err := notify.LoadSinks(cfg.SinksFile)
	if err != nil {
		return nil, err
	}
	sinks, err := notify.BuildAll(ctx, notify.DefaultRegistry(), sinkCfgs, log)
	if err != nil {
		return nil, err
	}
	summaries := make([]map[string]string, 0, len(sinkCfgs))
	for _, sc := range sinkCfgs {
		summaries = append(summaries, map[string]string{"id": sc.ID, "type": sc.Type})
	}
	log.InfoObj("notification sinks loaded", "sinks_meta", map[string]any{
		"count": len(summaries),
		"sinks": summaries,
	})
	return notify.NewFanout(sinks, cfg.AppName, log), nil
}

// Login persists token and drops the cached value so the next call reads it.
func (r *Requester) Login(token string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("token must not be empty")
	}
	if err := r.store.Set(r.cfg.TokenKey, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	r.tokens.Clear()
	r.log.InfoObj("credentials stored", "credential_key", r.cfg.TokenKey)
	return nil
}

// Logout removes the persisted token and empties the cache.
func (r *Requester) Logout() error {
	if err := r.store.Delete(r.cfg.TokenKey); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	r.tokens.Clear()
	r.log.InfoObj("credentials cleared", "credential_key", r.cfg.TokenKey)
	return nil
}

// Execute issues call through the selected pipeline.
func (r *Requester) Execute(ctx context.Context, call Call) (*Result, error) {
	method := strings.ToUpper(strings.TrimSpace(call.Method))
	if method == "" {
		method = http.MethodGet
	}

	switch call.Pipeline {
	case "", PipelineInterceptor:
		return r.viaInterceptor(ctx, method, call)
	case PipelineFetch:
		return r.viaFetch(ctx, method, call)
	default:
		return nil, fmt.Errorf("unknown pipeline %q", call.Pipeline)
	}
}

func (r *Requester) viaInterceptor(ctx context.Context, method string, call Call) (*Result, error) {
	req := interceptor.Request{
		Method: method,
		Path:   call.Path,
		Query:  call.Query,
		Body:   call.Body,
	}
	if call.Blob {
		req.ResponseType = interceptor.ResponseBlob
	}
	env, err := r.interceptor.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	res := &Result{Pipeline: PipelineInterceptor, Status: env.Response.StatusCode, Data: env.Data}
	if env.Failed() {
		res.Failed = true
		res.Message = env.Failure.Message
		res.Data = string(env.Response.Body)
	}
	return res, nil
}

func (r *Requester) viaFetch(ctx context.Context, method string, call Call) (*Result, error) {
	var (
		data any
		err  error
	)
	switch method {
	case http.MethodGet:
		data, err = r.fetch.Get(ctx, call.Path, call.Query)
	case http.MethodPost:
		data, err = r.fetch.Post(ctx, call.Path, call.Body)
	case http.MethodPut:
		data, err = r.fetch.Put(ctx, call.Path, call.Body)
	case http.MethodDelete:
		data, err = r.fetch.Delete(ctx, call.Path, call.Body)
	default:
		return nil, fmt.Errorf("fetch pipeline does not support method %s", method)
	}
	if err != nil {
		return nil, err
	}
	return &Result{Pipeline: PipelineFetch, Data: data}, nil
}

// Close releases the notification sinks and the store.
func (r *Requester) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if err := r.fanout.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close sinks: %w", err))
	}
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	return errors.Join(errs...)
}
