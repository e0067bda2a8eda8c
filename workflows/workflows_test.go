package workflows_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/langlab/graph"
	"github.com/smallnest/langlab/workflows"
)

func TestRunDemo(t *testing.T) {
	out, err := workflows.RunDemo(context.Background(), "Starting the workflow.")
	require.NoError(t, err)
	assert.Equal(t, []string{"Starting the workflow.", "I reached Node 1.", "And now at Node 2."}, out.Messages)
}

func TestScore(t *testing.T) {
	assert.Equal(t, 5, workflows.Score("hello"))
	assert.Equal(t, 12, workflows.Score("help me"))
	assert.Equal(t, 16, workflows.Score("Urgent"))
	assert.Equal(t, 2, workflows.Score("日本"))
	// "İ" lower-cases to "i" plus a combining dot.
	assert.Equal(t, 9, workflows.Score("İSTANBUL"))
}

func TestRunPriority(t *testing.T) {
	tests := []struct {
		input string
		score int
		path  string
		last  string
	}{
		{"hello", 5, "start -> low_priority -> validation -> final", "Final processing complete."},
		{"help me", 12, "start -> medium_priority -> validation -> final", "Final processing complete."},
		{"help needed now", 20, "start -> high_priority -> validation -> final", "Final processing complete."},
		{"I need some help with this", 31, "start -> high_priority -> escalation -> validation", "Validation complete."},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			out, err := workflows.RunPriority(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.score, out.Score)
			assert.Equal(t, tt.path, out.PathTaken)
			assert.Equal(t, tt.input, out.UserInput)
			require.NotEmpty(t, out.Messages)
			assert.Equal(t, "Starting workflow...", out.Messages[0])
			assert.Equal(t, tt.last, out.Messages[len(out.Messages)-1])
		})
	}
}

func TestRunPriority_Escalation(t *testing.T) {
	input := "URGENT AND IMPORTANT: Critical issue needs immediate help!"
	out, err := workflows.RunPriority(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Starting workflow...",
		"Analyzed input: '" + strings.ToLower(input) + "' (Score: 73)",
		"HIGH PRIORITY: Processing immediately!",
		"Escalating to senior team...",
		"Validation complete.",
	}, out.Messages)
}

func TestRunPriority_FullCaseMapping(t *testing.T) {
	out, err := workflows.RunPriority(context.Background(), "İSTANBUL")
	require.NoError(t, err)
	assert.Equal(t, 9, out.Score)
	assert.Equal(t, "Analyzed input: 'i\u0307stanbul' (Score: 9)", out.Messages[1])
}

func TestRunPriority_Listener(t *testing.T) {
	var visited []string
	listener := graph.NodeListenerFunc(func(_ context.Context, event graph.NodeEvent, name string, _ any, _ error) {
		if event == graph.NodeEventComplete {
			visited = append(visited, name)
		}
	})
	_, err := workflows.RunPriority(context.Background(), "hello", graph.WithListeners(listener))
	require.NoError(t, err)
	assert.Equal(t, []string{"start", "analyze", "low_priority", "validation", "final"}, visited)
}

func TestPriorityMermaid(t *testing.T) {
	diagram := graph.NewExporter(workflows.NewPriority()).DrawMermaid()
	assert.Contains(t, diagram, "analyze -.->|high_priority| high_priority")
	assert.Contains(t, diagram, "validation -.->|end| END")
	assert.Contains(t, diagram, "final --> END")
}
