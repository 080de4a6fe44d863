package recaptcha

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyAcceptsSuccessResponse(t *testing.T) {
	var gotSecret, gotToken, gotIP string
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotSecret = r.PostFormValue("secret")
		gotToken = r.PostFormValue("response")
		gotIP = r.PostFormValue("remoteip")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer stub.Close()

	verifier := NewVerifier("server-secret", nil).WithEndpoint(stub.URL)
	ok := verifier.Verify(context.Background(), "token-1", "203.0.113.9")

	assert.True(t, ok)
	assert.Equal(t, "server-secret", gotSecret)
	assert.Equal(t, "token-1", gotToken)
	assert.Equal(t, "203.0.113.9", gotIP)
}

func TestVerifyFailsClosedOnAPIRejection(t *testing.T) {
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
	}))
	defer stub.Close()

	assert.False(t, NewVerifier("s", nil).WithEndpoint(stub.URL).Verify(context.Background(), "bad", "ip"))
}

func TestVerifyFailsClosedOnServerError(t *testing.T) {
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer stub.Close()

	assert.False(t, NewVerifier("s", nil).WithEndpoint(stub.URL).Verify(context.Background(), "token", "ip"))
}

func TestVerifyFailsClosedOnMalformedResponse(t *testing.T) {
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer stub.Close()

	assert.False(t, NewVerifier("s", nil).WithEndpoint(stub.URL).Verify(context.Background(), "token", "ip"))
}

func TestVerifyFailsClosedOnUnreachableEndpoint(t *testing.T) {
	stub := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	stub.Close()

	assert.False(t, NewVerifier("s", nil).WithEndpoint(stub.URL).Verify(context.Background(), "token", "ip"))
}

func TestVerifySkipsCallForEmptyToken(t *testing.T) {
	called := false
	stub := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer stub.Close()

	assert.False(t, NewVerifier("s", nil).WithEndpoint(stub.URL).Verify(context.Background(), "   ", "ip"))
	assert.False(t, called)
}
