package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, APIToken: "test-token"}, zap.NewNop())
}

func TestSendText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/send", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var req struct {
			To   string `json:"to"`
			Body string `json:"body"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "628512340001@c.us", req.To)
		assert.Equal(t, "halo", req.Body)

		_ = json.NewEncoder(w).Encode(map[string]string{"message_id": "msg-77"})
	})

	id, err := client.SendText(context.Background(), "628512340001@c.us", "halo")
	require.NoError(t, err)
	assert.Equal(t, "msg-77", id)
}

func TestSendText_GatewayErrorField(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "session not paired"})
	})

	_, err := client.SendText(context.Background(), "x@c.us", "halo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session not paired")
}

func TestSendText_HTTPStatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})

	_, err := client.SendText(context.Background(), "x@c.us", "halo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=401")
}

func TestSendFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "laporan.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("workbook-bytes"), 0o644))

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/send-file", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "628512340001@c.us", r.FormValue("to"))
		assert.Equal(t, "Laporan lembur", r.FormValue("caption"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "laporan.xlsx", header.Filename)

		_ = json.NewEncoder(w).Encode(map[string]string{"message_id": "msg-1"})
	})

	err := client.SendFile(context.Background(), "628512340001@c.us", path, "Laporan lembur")
	assert.NoError(t, err)
}

func TestSendFile_MissingFile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for a missing file")
	})

	err := client.SendFile(context.Background(), "x@c.us", filepath.Join(t.TempDir(), "absent.xlsx"), "")
	assert.Error(t, err)
}

func TestSetTyping(t *testing.T) {
	var states []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/typing", r.URL.Path)
		var req struct {
			State string `json:"state"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		states = append(states, req.State)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{}"))
	})

	require.NoError(t, client.SetTyping(context.Background(), "x@c.us", true))
	require.NoError(t, client.SetTyping(context.Background(), "x@c.us", false))
	assert.Equal(t, []string{"composing", "paused"}, states)
}

func TestDownloadMedia(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/media/ref-123", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte("jpeg-bytes"))
	})

	data, err := client.DownloadMedia(context.Background(), "ref-123")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)
}

func TestDownloadMedia_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := client.DownloadMedia(context.Background(), "ref-404")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=404")
}
