package practicum

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"homework_status_bot/internal/domain/homework"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newTestClient(url string) *Client {
	return NewClient(url, "secret", 2*time.Second, newTestLogger())
}

func TestClient_Fetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "OAuth secret", r.Header.Get("Authorization"))
		assert.Equal(t, "1000", r.URL.Query().Get("from_date"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"homeworks":[{"homework_name":"hw1","status":"approved"}],"current_date":1700}`)
	}))
	defer server.Close()

	raw, err := newTestClient(server.URL).Fetch(context.Background(), 1000)
	require.NoError(t, err)

	records, err := homework.ExtractRecords(raw)
	require.NoError(t, err)
	require.Len(t, records, 1)
	rec, err := homework.AsRecord(records[0])
	require.NoError(t, err)
	assert.Equal(t, "hw1", rec[homework.FieldName])

	cursor, ok := homework.NextCursor(raw)
	assert.True(t, ok)
	assert.Equal(t, int64(1700), cursor)
}

func TestClient_Fetch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background(), 0)
	require.ErrorIs(t, err, homework.ErrFetch)

	var fetchErr *homework.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, homework.FetchKindStatus, fetchErr.Kind)
	assert.Equal(t, http.StatusInternalServerError, fetchErr.StatusCode)
}

func TestClient_Fetch_APIRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"code":"UnknownError","error":{"error":"Wrong from_date format"}}`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background(), 0)

	var fetchErr *homework.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, homework.FetchKindAPIError, fetchErr.Kind)
	assert.Equal(t, http.StatusBadRequest, fetchErr.StatusCode)
	assert.Contains(t, err.Error(), "UnknownError")
}

func TestClient_Fetch_InvalidJSON(t *testing.T) {
	for name, body := range map[string]string{
		"garbage":          `<html>oops</html>`,
		"array":            `[1,2,3]`,
		"null":             `null`,
		"trailing garbage": `{"homeworks":[],"current_date":1000} garbage`,
		"two objects":      `{"homeworks":[]}{"homeworks":[]}`,
	} {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, body)
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).Fetch(context.Background(), 0)

			var fetchErr *homework.FetchError
			require.True(t, errors.As(err, &fetchErr))
			assert.Equal(t, homework.FetchKindDecode, fetchErr.Kind)
		})
	}
}

func TestClient_Fetch_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestClient(url).Fetch(context.Background(), 0)

	var fetchErr *homework.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, homework.FetchKindTransport, fetchErr.Kind)
}

func TestClient_Fetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	c := NewClient(server.URL, "secret", 50*time.Millisecond, newTestLogger())
	_, err := c.Fetch(context.Background(), 0)

	var fetchErr *homework.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, homework.FetchKindTransport, fetchErr.Kind)
}
