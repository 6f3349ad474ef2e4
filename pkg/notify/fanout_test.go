package notify

import (
	"context"
	"errors"
	"testing"
)

type stubSink struct {
	id      string
	typ     string
	err     error
	notices []Notice
	closed  bool
}

func (s *stubSink) ID() string   { return s.id }
func (s *stubSink) Type() string { return s.typ }
func (s *stubSink) Close() error {
	s.closed = true
	return nil
}
func (s *stubSink) Send(_ context.Context, n Notice) error {
	s.notices = append(s.notices, n)
	return s.err
}

func TestFanoutPublishAggregatesErrors(t *testing.T) {
	fanout := NewFanout([]Sink{
		&stubSink{id: "ok", typ: SinkHTTP},
		nil,
		&stubSink{id: "bad", typ: SinkHTTP, err: errors.New("failed")},
	}, "app", nil)

	if fanout.Size() != 2 {
		t.Fatalf("expected nil sinks to be skipped, size=%d", fanout.Size())
	}
	count, err := fanout.Publish(context.Background(), Notice{})
	if count != 1 {
		t.Fatalf("expected 1 success, got %d", count)
	}
	if err == nil {
		t.Fatalf("expected aggregated error")
	}
}

func TestFanoutNotifierSwallowsDeliveryErrors(t *testing.T) {
	ok := &stubSink{id: "ok", typ: SinkHTTP}
	bad := &stubSink{id: "bad", typ: SinkSQS, err: errors.New("down")}
	log := &recordingLogger{}
	fanout := NewFanout([]Sink{ok, bad}, "samvad-request", log)

	fanout.Create("当前为测试环境，请注意辨别", MessageOptions{Type: TypeWarning, Closable: true})
	fanout.Error("网络超时")

	if len(ok.notices) != 2 {
		t.Fatalf("expected 2 notices delivered, got %d", len(ok.notices))
	}
	warn := ok.notices[0]
	if warn.Type != TypeWarning || !warn.Closable || warn.Source != "samvad-request" {
		t.Fatalf("unexpected warning notice %#v", warn)
	}
	if ok.notices[1].Type != TypeError || ok.notices[1].Message != "网络超时" {
		t.Fatalf("unexpected error notice %#v", ok.notices[1])
	}
	if len(log.levels) != 2 || log.levels[0] != "warn" {
		t.Fatalf("expected a warning log per failed delivery, got %v", log.levels)
	}

	if err := fanout.Close(); err != nil || !ok.closed || !bad.closed {
		t.Fatalf("expected all sinks closed, err=%v", err)
	}
}

func TestBuildAllWithDefaultRegistry(t *testing.T) {
	sinks, err := BuildAll(context.Background(), DefaultRegistry(), []SinkConfig{
		{ID: "hook", Type: SinkHTTP, HTTP: &HTTPSinkConfig{URL: "https://example.com", Method: "POST", TimeoutSeconds: 1}},
	}, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(sinks) != 1 || sinks[0].ID() != "hook" {
		t.Fatalf("unexpected sinks %#v", sinks)
	}
}
