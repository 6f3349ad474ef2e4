package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/samvad-hq/samvad-request/internal/app"
	"github.com/samvad-hq/samvad-request/internal/config"
	"github.com/samvad-hq/samvad-request/internal/logger"
	"github.com/spf13/pflag"
)

type options struct {
	method   string
	path     string
	query    []string
	body     string
	pipeline string
	blob     bool
	login    string
	logout   bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "requester failed: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := pflag.NewFlagSet("requester", pflag.ContinueOnError)
	fs.StringVar(&opts.method, "method", "GET", "HTTP method")
	fs.StringVar(&opts.path, "path", "", "request path, resolved against the API base URL")
	fs.StringArrayVar(&opts.query, "query", nil, "query parameter as key=value (repeatable)")
	fs.StringVar(&opts.body, "body", "", "JSON request body")
	fs.StringVar(&opts.pipeline, "pipeline", app.PipelineInterceptor, "request pipeline: interceptor or fetch")
	fs.BoolVar(&opts.blob, "blob", false, "write the raw response body to stdout")
	fs.StringVar(&opts.login, "login", "", "store a bearer token before the call")
	fs.BoolVar(&opts.logout, "logout", false, "remove the stored bearer token")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func buildCall(opts options) (app.Call, error) {
	call := app.Call{
		Pipeline: opts.pipeline,
		Method:   opts.method,
		Path:     opts.path,
		Blob:     opts.blob,
	}
	if len(opts.query) > 0 {
		call.Query = make(map[string]any, len(opts.query))
		for _, kv := range opts.query {
			key, value, ok := strings.Cut(kv, "=")
			if !ok || strings.TrimSpace(key) == "" {
				return app.Call{}, fmt.Errorf("invalid query %q (expected key=value)", kv)
			}
			key = strings.TrimSpace(key)
			switch prev := call.Query[key].(type) {
			case nil:
				call.Query[key] = value
			case string:
				call.Query[key] = []string{prev, value}
			case []string:
				call.Query[key] = append(prev, value)
			}
		}
	}
	if opts.body != "" {
		var body any
		if err := json.Unmarshal([]byte(opts.body), &body); err != nil {
			return app.Call{}, fmt.Errorf("parse body: %w", err)
		}
		call.Body = body
	}
	return call, nil
}

func run(args []string, out io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	sugar, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()
	log := logger.New(sugar)

	logger.DebugObj("requester starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	requester, err := app.NewRequester(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize requester", "error", err)
		return err
	}
	defer func() {
		if cerr := requester.Close(); cerr != nil {
			logger.ErrorObj("requester close failed", "error", cerr)
		}
	}()

	if opts.logout {
		if err := requester.Logout(); err != nil {
			return err
		}
	}
	if opts.login != "" {
		if err := requester.Login(opts.login); err != nil {
			return err
		}
	}
	if opts.path == "" {
		if opts.login != "" || opts.logout {
			return nil
		}
		return errors.New("--path is required")
	}

	call, err := buildCall(opts)
	if err != nil {
		return err
	}
	res, err := requester.Execute(ctx, call)
	if err != nil {
		return fmt.Errorf("%s call: %w", call.Pipeline, err)
	}

	if raw, ok := res.Data.([]byte); ok && opts.blob && !res.Failed {
		_, err := out.Write(raw)
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
