package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/smallnest/langlab/log"
)

// Runnable is a compiled StateGraph.
type Runnable[S any] struct {
	graph *StateGraph[S]
	cfg   compileConfig
}

// Name returns the name given with WithName.
func (r *Runnable[S]) Name() string { return r.cfg.name }

// Graph returns the graph the runnable was compiled from.
func (r *Runnable[S]) Graph() *StateGraph[S] { return r.graph }

// Invoke runs the graph from its entry point until END, one node at a time.
func (r *Runnable[S]) Invoke(ctx context.Context, input S) (S, error) {
	tracer := r.cfg.tracer
	span := tracer.StartSpan(ctx, TraceEventGraphStart, r.cfg.name)
	out, err := r.invoke(ContextWithSpan(ctx, span), input)
	tracer.EndSpan(ctx, span, out, err)
	return out, err
}

func (r *Runnable[S]) invoke(ctx context.Context, input S) (S, error) {
	var zero S
	state := input

	if schema := r.graph.Schema; schema != nil {
		var err error
		state, err = schema.Update(schema.Init(), input)
		if err != nil {
			return zero, fmt.Errorf("failed to initialize state with schema: %w", err)
		}
	}

	r.notify(ctx, EventChainStart, r.cfg.name, state, nil)
	log.Debug("graph %s: starting at %s", r.cfg.name, r.graph.entryPoint)

	current := r.graph.entryPoint
	for steps := 0; current != END; steps++ {
		if steps >= r.cfg.recursionLimit {
			err := fmt.Errorf("%w: %d steps without reaching %s", ErrRecursionLimit, r.cfg.recursionLimit, END)
			r.notify(ctx, NodeEventError, current, state, err)
			return zero, err
		}
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		node, ok := r.graph.nodes[current]
		if !ok {
			return zero, fmt.Errorf("%w: %s", ErrNodeNotFound, current)
		}

		r.notify(ctx, NodeEventStart, current, state, nil)
		nodeSpan := r.cfg.tracer.StartSpan(ctx, TraceEventNodeStart, current)
		out, err := r.runNode(ContextWithSpan(ctx, nodeSpan), node, state)
		r.cfg.tracer.EndSpan(ctx, nodeSpan, out, err)
		if err != nil {
			r.notify(ctx, NodeEventError, current, state, err)
			return zero, fmt.Errorf("error in node %s: %w", current, err)
		}

		if schema := r.graph.Schema; schema != nil {
			state, err = schema.Update(state, out)
			if err != nil {
				return zero, fmt.Errorf("schema update failed after %s: %w", current, err)
			}
		} else {
			state = out
		}
		r.notify(ctx, NodeEventComplete, current, state, nil)

		next, err := r.next(ctx, current, state)
		if err != nil {
			return zero, err
		}
		r.cfg.tracer.TraceEdgeTraversal(ctx, current, next)
		log.Debug("graph %s: %s -> %s", r.cfg.name, current, next)
		current = next
	}

	r.notify(ctx, EventChainEnd, r.cfg.name, state, nil)
	return state, nil
}

func (r *Runnable[S]) next(ctx context.Context, from string, state S) (string, error) {
	if ce, ok := r.graph.conditionalEdges[from]; ok {
		key := ce.router(ctx, state)
		target, ok := ce.resolve(key)
		if !ok {
			return "", fmt.Errorf("%w: router for %s returned unmapped key %q", ErrInvalidRoute, from, key)
		}
		if target != END && !r.graph.hasNode(target) {
			return "", fmt.Errorf("%w: router for %s returned unknown node %q", ErrInvalidRoute, from, target)
		}
		return target, nil
	}
	for _, e := range r.graph.edges {
		if e.From == from {
			return e.To, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoOutgoingEdge, from)
}

func (r *Runnable[S]) runNode(ctx context.Context, node Node[S], state S) (S, error) {
	policy := r.cfg.retry
	attempts := 1
	if policy != nil {
		attempts += policy.MaxRetries
	}

	var zero S
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		out, err := node.Function(ctx, state)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if policy == nil || attempt == attempts-1 || !policy.retryable(err) {
			break
		}

		delay := policy.delay(attempt)
		log.Warn("node %s failed (attempt %d/%d), retrying in %s: %v", node.Name, attempt+1, attempts, delay, err)
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}
	}
	return zero, lastErr
}

func (r *Runnable[S]) notify(ctx context.Context, event NodeEvent, name string, state S, err error) {
	for _, l := range r.cfg.listeners {
		l.OnNodeEvent(ctx, event, name, state, err)
	}
}
