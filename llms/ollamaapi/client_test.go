package ollamaapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelNames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"models":[
			{"name":"gpt-oss:20b","model":"gpt-oss:20b","size":13000000000,"details":{"family":"gptoss","parameter_size":"20.9B"}},
			{"name":"llama3.2:1b","model":"","size":1300000000}
		]}`))
	}))
	defer server.Close()

	client, err := New(WithBaseURL(server.URL + "/"))
	require.NoError(t, err)
	names, err := client.ModelNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gpt-oss:20b", "llama3.2:1b"}, names)

	models, err := client.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "20.9B", models[0].Details.ParameterSize)
}

func TestVersion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"version":"0.12.3"}`))
	}))
	defer server.Close()

	v, err := newClient(t, server.URL).Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0.12.3", v)
}

func TestErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newClient(t, server.URL).List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 500")
}

func TestInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	_, err := newClient(t, server.URL).List(context.Background())
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestHostFromEnv(t *testing.T) {
	t.Setenv("OLLAMA_HOST", "")
	assert.Equal(t, DefaultBaseURL, HostFromEnv())

	t.Setenv("OLLAMA_HOST", "10.0.0.5:11434")
	assert.Equal(t, "http://10.0.0.5:11434", HostFromEnv())

	t.Setenv("OLLAMA_HOST", "https://ollama.internal:8443")
	assert.Equal(t, "https://ollama.internal:8443", HostFromEnv())
}

func newClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := New(WithBaseURL(baseURL))
	require.NoError(t, err)
	return c
}
