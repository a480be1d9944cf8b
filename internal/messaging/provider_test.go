package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPProvider_OTPGenerate(t *testing.T) {
	var got otpGenerateRequest
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/otp/generate", r.URL.Path)
		gotKey = r.Header.Get("api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"code":"1000","message":"Successful"}`))
	}))
	defer srv.Close()

	p := &HTTPProvider{BaseURL: srv.URL, APIKey: "key-123", SenderID: "Ministry"}
	require.NoError(t, p.OTPGenerate(context.Background(), "+233244000001"))
	assert.Equal(t, "key-123", gotKey)
	assert.Equal(t, "+233244000001", got.Number)
	assert.Equal(t, "Ministry", got.SenderID)
	assert.Equal(t, 6, got.Length)
}

func TestHTTPProvider_OTPVerify(t *testing.T) {
	answer := `{"code":"1100","message":"Successful"}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/otp/verify", r.URL.Path)
		w.Write([]byte(answer))
	}))
	defer srv.Close()

	p := &HTTPProvider{BaseURL: srv.URL, APIKey: "key-123"}
	ok, err := p.OTPVerify(context.Background(), "+233244000001", "123456")
	require.NoError(t, err)
	assert.True(t, ok)

	answer = `{"code":"1104","message":"Invalid code"}`
	ok, err = p.OTPVerify(context.Background(), "+233244000001", "000000")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHTTPProvider_OTPUnconfigured(t *testing.T) {
	p := &HTTPProvider{}
	assert.ErrorIs(t, p.OTPGenerate(context.Background(), "+233244000001"), ErrNotConfigured)
	_, err := p.OTPVerify(context.Background(), "+233244000001", "123456")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestHTTPProvider_SendGeneralNilClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/sms/send", r.URL.Path)
		w.Write([]byte(`{"status":"success"}`))
	}))
	defer srv.Close()

	p := &HTTPProvider{BaseURL: srv.URL, APIKey: "key-123", SenderID: "Ministry"}
	require.NoError(t, p.SendGeneral(context.Background(), "Hello", []string{"+233244000001"}))
	assert.Nil(t, p.Client)
}

func TestHTTPProvider_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer srv.Close()

	p := &HTTPProvider{BaseURL: srv.URL, APIKey: "key-123"}
	err := p.SendGeneral(context.Background(), "Hello", []string{"+233244000001"})
	assert.Error(t, err)
}
