package graph

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smallnest/langlab/log"
)

// TraceEvent is the kind of a span.
type TraceEvent string

const (
	// TraceEventGraphStart opens a graph run
	TraceEventGraphStart TraceEvent = "graph_start"

	// TraceEventGraphEnd closes a graph run
	TraceEventGraphEnd TraceEvent = "graph_end"

	// TraceEventNodeStart opens a node execution
	TraceEventNodeStart TraceEvent = "node_start"

	// TraceEventNodeEnd closes a successful node execution
	TraceEventNodeEnd TraceEvent = "node_end"

	// TraceEventNodeError closes a failed node execution
	TraceEventNodeError TraceEvent = "node_error"

	// TraceEventEdgeTraversal records a move from one node to the next
	TraceEventEdgeTraversal TraceEvent = "edge_traversal"

	// TraceEventLLMStart opens a model call
	TraceEventLLMStart TraceEvent = "llm_start"

	// TraceEventLLMEnd closes a successful model call
	TraceEventLLMEnd TraceEvent = "llm_end"

	// TraceEventLLMError closes a failed model call
	TraceEventLLMError TraceEvent = "llm_error"
)

// TraceSpan is one timed unit of work. Spans opened while another span is
// in the context record it as their parent.
type TraceSpan struct {
	ID        string
	ParentID  string
	Event     TraceEvent
	NodeName  string
	FromNode  string
	ToNode    string
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	State     any
	Error     error
	Metadata  map[string]any
}

// Ended reports whether EndSpan was called for the span.
func (s *TraceSpan) Ended() bool { return !s.EndTime.IsZero() }

// TraceHook receives every span when it starts and again when it ends.
type TraceHook interface {
	OnEvent(ctx context.Context, span *TraceSpan)
}

// TraceHookFunc adapts a function to TraceHook.
type TraceHookFunc func(ctx context.Context, span *TraceSpan)

// OnEvent implements TraceHook.
func (f TraceHookFunc) OnEvent(ctx context.Context, span *TraceSpan) {
	f(ctx, span)
}

// Tracer collects spans of graph runs and model calls. A nil *Tracer is
// valid and records nothing.
type Tracer struct {
	mu    sync.Mutex
	hooks []TraceHook
	spans []*TraceSpan
}

// NewTracer creates a tracer with the given hooks.
func NewTracer(hooks ...TraceHook) *Tracer {
	return &Tracer{hooks: hooks}
}

// AddHook registers a hook.
func (t *Tracer) AddHook(hook TraceHook) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hooks = append(t.hooks, hook)
}

// StartSpan opens a span named name. The parent is taken from ctx.
func (t *Tracer) StartSpan(ctx context.Context, event TraceEvent, name string) *TraceSpan {
	if t == nil {
		return nil
	}
	span := &TraceSpan{
		ID:        uuid.NewString(),
		Event:     event,
		NodeName:  name,
		StartTime: time.Now(),
		Metadata:  make(map[string]any),
	}
	if parent := SpanFromContext(ctx); parent != nil {
		span.ParentID = parent.ID
	}
	t.record(ctx, span)
	return span
}

// EndSpan closes span, turning each start event into its end or error event.
func (t *Tracer) EndSpan(ctx context.Context, span *TraceSpan, state any, err error) {
	if t == nil || span == nil {
		return
	}
	t.mu.Lock()
	span.EndTime = time.Now()
	span.Duration = span.EndTime.Sub(span.StartTime)
	span.State = state
	span.Error = err
	switch span.Event {
	case TraceEventNodeStart:
		span.Event = TraceEventNodeEnd
		if err != nil {
			span.Event = TraceEventNodeError
		}
	case TraceEventLLMStart:
		span.Event = TraceEventLLMEnd
		if err != nil {
			span.Event = TraceEventLLMError
		}
	case TraceEventGraphStart:
		span.Event = TraceEventGraphEnd
	}
	hooks := t.hooks
	t.mu.Unlock()

	for _, hook := range hooks {
		hook.OnEvent(ctx, span)
	}
}

// TraceEdgeTraversal records a zero length span for the move from -> to.
func (t *Tracer) TraceEdgeTraversal(ctx context.Context, from, to string) {
	if t == nil {
		return
	}
	now := time.Now()
	span := &TraceSpan{
		ID:        uuid.NewString(),
		Event:     TraceEventEdgeTraversal,
		FromNode:  from,
		ToNode:    to,
		StartTime: now,
		EndTime:   now,
		Metadata:  make(map[string]any),
	}
	if parent := SpanFromContext(ctx); parent != nil {
		span.ParentID = parent.ID
	}
	t.record(ctx, span)
}

func (t *Tracer) record(ctx context.Context, span *TraceSpan) {
	t.mu.Lock()
	t.spans = append(t.spans, span)
	hooks := t.hooks
	t.mu.Unlock()

	for _, hook := range hooks {
		hook.OnEvent(ctx, span)
	}
}

// Spans returns the collected spans in the order they were opened.
func (t *Tracer) Spans() []*TraceSpan {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*TraceSpan, len(t.spans))
	copy(out, t.spans)
	return out
}

// Children returns the spans whose parent is id.
func (t *Tracer) Children(id string) []*TraceSpan {
	var out []*TraceSpan
	for _, s := range t.Spans() {
		if s.ParentID == id {
			out = append(out, s)
		}
	}
	return out
}

// Clear drops the collected spans.
func (t *Tracer) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.spans = nil
}

type contextKey string

const spanContextKey contextKey = "langlab_span"

// ContextWithSpan stores span in ctx. A nil span leaves ctx unchanged.
func ContextWithSpan(ctx context.Context, span *TraceSpan) context.Context {
	if span == nil {
		return ctx
	}
	return context.WithValue(ctx, spanContextKey, span)
}

// SpanFromContext returns the span stored in ctx, if any.
func SpanFromContext(ctx context.Context) *TraceSpan {
	if span, ok := ctx.Value(spanContextKey).(*TraceSpan); ok {
		return span
	}
	return nil
}

// LogTraceHook logs every finished span at debug level, and failed ones as
// warnings.
func LogTraceHook() TraceHook {
	return TraceHookFunc(func(_ context.Context, span *TraceSpan) {
		if !span.Ended() {
			return
		}
		switch {
		case span.Event == TraceEventEdgeTraversal:
			log.Debug("trace %s: %s -> %s", span.ID, span.FromNode, span.ToNode)
		case span.Error != nil:
			log.Warn("trace %s: %s %s failed after %s: %v", span.ID, span.Event, span.NodeName, span.Duration, span.Error)
		default:
			log.Debug("trace %s: %s %s took %s", span.ID, span.Event, span.NodeName, span.Duration)
		}
	})
}

type spanRecord struct {
	ID         string         `json:"id"`
	ParentID   string         `json:"parent_id,omitempty"`
	Event      TraceEvent     `json:"event"`
	Name       string         `json:"name,omitempty"`
	From       string         `json:"from,omitempty"`
	To         string         `json:"to,omitempty"`
	Start      time.Time      `json:"start"`
	DurationMS float64        `json:"duration_ms"`
	Error      string         `json:"error,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// JSONTraceHook writes each finished span to w as one JSON line.
func JSONTraceHook(w io.Writer) TraceHook {
	var mu sync.Mutex
	enc := json.NewEncoder(w)
	return TraceHookFunc(func(_ context.Context, span *TraceSpan) {
		if !span.Ended() {
			return
		}
		rec := spanRecord{
			ID:         span.ID,
			ParentID:   span.ParentID,
			Event:      span.Event,
			Name:       span.NodeName,
			From:       span.FromNode,
			To:         span.ToNode,
			Start:      span.StartTime,
			DurationMS: float64(span.Duration) / float64(time.Millisecond),
			Metadata:   span.Metadata,
		}
		if span.Error != nil {
			rec.Error = span.Error.Error()
		}
		mu.Lock()
		defer mu.Unlock()
		if err := enc.Encode(rec); err != nil {
			log.Warn("failed to write span %s: %v", span.ID, err)
		}
	})
}
