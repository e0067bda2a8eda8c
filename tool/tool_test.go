package tool

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

var fixedNow = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// answerLLM replies with a canned answer and records the prompts it saw.
type answerLLM struct {
	answer   string
	err      error
	messages []llms.MessageContent
}

func (m *answerLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = messages
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.answer}}}, nil
}

func (m *answerLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestParseArgs(t *testing.T) {
	a := ParseArgs(` {"a": 2, "b": "3.5", "name": " Tokyo "} `)
	assert.True(t, a.IsObject())
	assert.True(t, a.Has("a"))
	assert.False(t, a.Has("c"))
	assert.Equal(t, "Tokyo", a.String("name"))

	v, err := a.Float("a")
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	v, err = a.Float("b")
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)

	_, err = a.Float("c")
	assert.ErrorContains(t, err, `missing required field "c"`)

	plain := ParseArgs(`"London"`)
	assert.False(t, plain.IsObject())
	assert.Equal(t, "London", plain.String("location"))

	n, err := ParseArgs("7").Int("days", 0)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	_, err = ParseArgs("seven").Int("days", 0)
	assert.Error(t, err)

	n, err = ParseArgs(`{}`).Int("days", 30)
	require.NoError(t, err)
	assert.Equal(t, 30, n)
}

func TestCalculator(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		tool  *Func
		input string
		want  string
	}{
		{Add(), `{"a": 2, "b": 4}`, "6"},
		{Subtract(), `{"a": 8, "b": 3}`, "5"},
		{Multiply(), `{"a": 2, "b": 4}`, "8"},
		{Divide(), `{"a": 10, "b": 2}`, "5"},
		{Divide(), `{"a": 1, "b": 4}`, "0.25"},
		{Divide(), `{"a": 1, "b": 0}`, "Error: Division by zero"},
	}
	for _, tt := range tests {
		t.Run(tt.tool.Name()+" "+tt.input, func(t *testing.T) {
			got, err := tt.tool.Call(ctx, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Add().Call(ctx, `{"a": 1}`)
	assert.Error(t, err)

	schema := Add().Schema()
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []string{"a", "b"}, schema["required"])
}

func TestDateTimeTools(t *testing.T) {
	ctx := context.Background()

	out, err := CurrentTime(fixedClock).Call(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-15 12:00:00", out)

	out, err = CurrentDate(fixedClock).Call(ctx, "{}")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-15", out)

	out, err = LocalTimezone(fixedClock).Call(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "UTC", out)

	out, err = FutureDate(fixedClock).Call(ctx, `{"days": 7}`)
	require.NoError(t, err)
	assert.Equal(t, "Date 7 days from today: 2025-01-22 (Wednesday)", out)

	out, err = FutureDate(fixedClock).Call(ctx, `{"days": -15}`)
	require.NoError(t, err)
	assert.Equal(t, "Date -15 days from today: 2024-12-31 (Tuesday)", out)

	out, err = FutureDate(fixedClock).Call(ctx, `{"days": "soon"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Error calculating date:")
}

func TestDateDifference(t *testing.T) {
	ctx := context.Background()
	tool := DateDifference()

	out, err := tool.Call(ctx, `{"date1": "2024-01-01", "date2": "2025-03-02"}`)
	require.NoError(t, err)
	assert.Equal(t, "Difference: 426 total days (1 years, 2 months, 1 days)", out)

	// order does not matter
	out, err = tool.Call(ctx, `{"date1": "2025-03-02", "date2": "2024-01-01"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "426 total days")

	out, err = tool.Call(ctx, `{"date1": "13 jun 1986", "date2": "2025-03-02"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Error calculating date difference:")
}

func TestLookupTimezone(t *testing.T) {
	tz, ok := LookupTimezone("  New   York ")
	assert.True(t, ok)
	assert.Equal(t, "America/New_York", tz)

	tz, ok = LookupTimezone("PUNE")
	assert.True(t, ok)
	assert.Equal(t, "Asia/Kolkata", tz)

	_, ok = LookupTimezone("Satara")
	assert.False(t, ok)
}

func TestTimezoneIdentifier(t *testing.T) {
	ctx := context.Background()

	llm := &answerLLM{answer: " 'Asia/Kolkata' "}
	id := NewTimezoneIdentifier(llm)

	out, err := id.Call(ctx, `{"city": "Tokyo"}`)
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", out)
	assert.Nil(t, llm.messages, "table hits must not call the model")

	out, err = id.Call(ctx, `{"city": "Kolhapur"}`)
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", out)
	require.Len(t, llm.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, llm.messages[0].Role)
	assert.Equal(t, llms.TextContent{Text: "IANA timezone for Kolhapur?"}, llm.messages[1].Parts[0])

	failing := NewTimezoneIdentifier(&answerLLM{err: errors.New("model offline")})
	out, err = failing.Call(ctx, "Kolhapur")
	require.NoError(t, err)
	assert.Equal(t, "Error: model offline", out)

	out, err = NewTimezoneIdentifier(nil).Call(ctx, "Kolhapur")
	require.NoError(t, err)
	assert.Contains(t, out, "Error: ")
}

func TestTimeInTimezone(t *testing.T) {
	ctx := context.Background()
	tool := TimeInTimezone(fixedClock)

	out, err := tool.Call(ctx, `{"timezone": "Asia/Kolkata"}`)
	require.NoError(t, err)
	assert.Equal(t, "\nCurrent time: 2025-01-15 17:30:00 IST\nTimezone: Asia/Kolkata\nTime difference from local: +5.5 hours", out)

	out, err = tool.Call(ctx, `{"timezone": "America/New_York"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "07:00:00 EST")
	assert.Contains(t, out, "-5.0 hours")

	out, err = tool.Call(ctx, `{"timezone": "Mars/Olympus"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Error calculating time for timezone 'Mars/Olympus'")
	assert.Contains(t, out, "Please verify the IANA timezone format.")
}

func TestToolSets(t *testing.T) {
	basic := BasicAgentTools(SetConfig{Clock: fixedClock})
	require.Len(t, basic, 18)

	names := make([]string, len(basic))
	for i, tl := range basic {
		names[i] = tl.Name()
		_, ok := tl.(SchemaTool)
		assert.True(t, ok, "%s should declare a schema", tl.Name())
	}
	assert.Equal(t, []string{
		"add", "multiply", "subtract", "divide", "get_current_weather",
		"get_current_time", "get_current_date", "calculate_future_date",
		"calculate_date_difference", "identify_timezone", "calculate_time_in_timezone",
		"search", "get_local_timezone", "wikipedia_search", "get_us_stock_price",
		"get_nse_stock_price", "get_us_financial_statements", "get_nse_financial_statements",
	}, names)

	fin := FinancialTools(SetConfig{})
	require.Len(t, fin, 6)
	assert.Equal(t, "compare_stocks", fin[5].Name())

	arith := ByName(ArithmeticTools())
	assert.Len(t, arith, 3)
	assert.Contains(t, arith, "divide")
}
