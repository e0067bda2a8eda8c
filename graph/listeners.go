package graph

import (
	"context"
	"time"

	"github.com/smallnest/langlab/log"
)

// NodeEvent represents different types of node events
type NodeEvent string

const (
	// NodeEventStart indicates a node has started execution
	NodeEventStart NodeEvent = "start"

	// NodeEventComplete indicates a node has completed successfully
	NodeEventComplete NodeEvent = "complete"

	// NodeEventError indicates a node encountered an error
	NodeEventError NodeEvent = "error"

	// EventChainStart indicates the graph execution has started
	EventChainStart NodeEvent = "chain_start"

	// EventChainEnd indicates the graph execution has completed
	EventChainEnd NodeEvent = "chain_end"
)

// NodeListener is notified synchronously, in registration order, of every
// node event. For chain events nodeName is the graph name.
type NodeListener interface {
	OnNodeEvent(ctx context.Context, event NodeEvent, nodeName string, state any, err error)
}

// NodeListenerFunc is a function adapter for NodeListener
type NodeListenerFunc func(ctx context.Context, event NodeEvent, nodeName string, state any, err error)

// OnNodeEvent implements the NodeListener interface
func (f NodeListenerFunc) OnNodeEvent(ctx context.Context, event NodeEvent, nodeName string, state any, err error) {
	f(ctx, event, nodeName, state, err)
}

// LoggingListener logs node events through a log.Logger.
type LoggingListener struct {
	logger       log.Logger
	includeState bool
	started      map[string]time.Time
}

// NewLoggingListener creates a listener writing to logger, or to the package
// logger when logger is nil.
func NewLoggingListener(logger log.Logger, includeState bool) *LoggingListener {
	return &LoggingListener{logger: logger, includeState: includeState, started: make(map[string]time.Time)}
}

func (l *LoggingListener) log() log.Logger {
	if l.logger != nil {
		return l.logger
	}
	return log.GetDefaultLogger()
}

// OnNodeEvent implements NodeListener.
func (l *LoggingListener) OnNodeEvent(_ context.Context, event NodeEvent, nodeName string, state any, err error) {
	logger := l.log()
	switch event {
	case EventChainStart:
		logger.Info("graph %s started", nodeName)
	case EventChainEnd:
		logger.Info("graph %s finished", nodeName)
	case NodeEventStart:
		l.started[nodeName] = time.Now()
		if l.includeState {
			logger.Debug("node %s started with state %+v", nodeName, state)
		} else {
			logger.Debug("node %s started", nodeName)
		}
	case NodeEventComplete:
		elapsed := time.Since(l.started[nodeName])
		if l.includeState {
			logger.Info("node %s completed in %s: %+v", nodeName, elapsed, state)
		} else {
			logger.Info("node %s completed in %s", nodeName, elapsed)
		}
	case NodeEventError:
		logger.Error("node %s failed: %v", nodeName, err)
	}
}
