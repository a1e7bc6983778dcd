// ABOUTME: Tests for the outbound caller against httptest upstreams
// ABOUTME: Covers JSON/text branching, upstream errors, and timeout hints

package invoke

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaller_JSONResponse(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"users":[{"id":1}]}`))
	}))
	defer upstream.Close()

	caller := NewCaller(CallerConfig{})
	req := &Request{
		URL:     upstream.URL + "/users",
		Method:  "GET",
		Headers: map[string]string{"Authorization": "Bearer tok"},
	}

	result, err := caller.Do(context.Background(), req, 0)
	require.NoError(t, err)
	assert.True(t, result.IsJSON)
	assert.Contains(t, result.Text(), `"users"`)
}

func TestCaller_TextResponse(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("pong"))
	}))
	defer upstream.Close()

	caller := NewCaller(CallerConfig{})
	result, err := caller.Do(context.Background(), &Request{URL: upstream.URL, Method: "GET"}, 0)
	require.NoError(t, err)
	assert.False(t, result.IsJSON)
	assert.Equal(t, "pong", result.Text())
}

func TestCaller_UpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer upstream.Close()

	caller := NewCaller(CallerConfig{})
	_, err := caller.Do(context.Background(), &Request{URL: upstream.URL, Method: "GET"}, 0)

	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, http.StatusInternalServerError, upstreamErr.Status)
	assert.Contains(t, upstreamErr.Error(), "500")
	assert.Contains(t, upstreamErr.Error(), "boom")
}

func TestCaller_MalformedJSON(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{not json`))
	}))
	defer upstream.Close()

	caller := NewCaller(CallerConfig{})
	_, err := caller.Do(context.Background(), &Request{URL: upstream.URL, Method: "GET"}, 0)
	assert.ErrorIs(t, err, ErrDecodeResponse)
}

func TestCaller_SendsBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		assert.JSONEq(t, `{"name":"ada"}`, string(buf))
		w.WriteHeader(http.StatusCreated)
	}))
	defer upstream.Close()

	caller := NewCaller(CallerConfig{})
	req := &Request{
		URL:     upstream.URL,
		Method:  "POST",
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    []byte(`{"name":"ada"}`),
	}

	result, err := caller.Do(context.Background(), req, 0)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, result.Status)
}

func TestCaller_TimeoutHint(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer upstream.Close()

	caller := NewCaller(CallerConfig{})
	_, err := caller.Do(context.Background(), &Request{URL: upstream.URL, Method: "GET"}, 50)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
