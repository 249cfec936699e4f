package dingsdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSdk(url string) *DingSdk {
	sdk := NewDingSdk(url)
	sdk.newBackOff = func() backoff.BackOff {
		return &backoff.ZeroBackOff{}
	}
	return sdk
}

func TestNotify(t *testing.T) {
	var got DingNotify
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"errcode":0,"errmsg":"ok"}`))
	}))
	defer server.Close()

	result, err := newTestSdk(server.URL).Notify(context.Background(), NewTextNotify("swap: SOL(1.00)->USDT(97.75)"))
	require.NoError(t, err)
	assert.Equal(t, "ok", result.ErrMsg)
	assert.Equal(t, "text", got.MsgType)
	assert.Equal(t, "swap: SOL(1.00)->USDT(97.75)", got.Text.Content)
	assert.False(t, got.At.IsAtAll)
}

func TestNotify_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"errcode":0,"errmsg":"ok"}`))
	}))
	defer server.Close()

	_, err := newTestSdk(server.URL).Notify(context.Background(), NewTextNotify("x"))
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestNotify_GivesUp(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestSdk(server.URL).Notify(context.Background(), NewTextNotify("x"))
	assert.Error(t, err)
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestNotify_RejectedIsNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"errcode":310000,"errmsg":"keywords not in content"}`))
	}))
	defer server.Close()

	_, err := newTestSdk(server.URL).Notify(context.Background(), NewTextNotify("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "310000")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
