package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestServeRoundTripsSignature(t *testing.T) {
	handler := func(req RequestEnvelope) ([]byte, error) {
		assert.Equal(t, "alice", req.Requester)
		return []byte("signed:" + string(req.Payload)), nil
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Serve(w, r, handler, zaptest.NewLogger(t))
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	resp, err := Dial(url, RequestEnvelope{Requester: "alice", Payload: []byte("tx-bytes")})
	require.NoError(t, err)
	assert.Equal(t, "signed:tx-bytes", string(resp.Signature))
	assert.Empty(t, resp.Error)
}

func TestServeReturnsErrorMessage(t *testing.T) {
	handler := func(req RequestEnvelope) ([]byte, error) {
		return nil, assertionError("wrong notary")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Serve(w, r, handler, zaptest.NewLogger(t))
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	resp, err := Dial(url, RequestEnvelope{Requester: "bob", Payload: []byte("tx-bytes")})
	require.NoError(t, err)
	assert.Equal(t, "wrong notary", resp.Error)
	assert.Empty(t, resp.Signature)
}

type assertionError string

func (e assertionError) Error() string { return string(e) }
