// Package practicum talks to the homework status API.
package practicum

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"homework_status_bot/internal/domain/homework"

	"github.com/sirupsen/logrus"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 1 << 20

// Client fetches homework statuses changed since a cursor.
type Client struct {
	httpClient *http.Client
	endpoint   string
	token      string
	logger     *logrus.Entry
}

func NewClient(endpoint, token string, timeout time.Duration, logger *logrus.Entry) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		token:      token,
		logger:     logger,
	}
}

// Fetch requests statuses updated at or after cursor and returns the decoded body as is.
// Every failure is a *homework.FetchError.
func (c *Client) Fetch(ctx context.Context, cursor int64) (homework.RawResponse, error) {
	reqURL, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, &homework.FetchError{Kind: homework.FetchKindTransport, Err: fmt.Errorf("invalid endpoint: %w", err)}
	}
	q := reqURL.Query()
	q.Set("from_date", strconv.FormatInt(cursor, 10))
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, &homework.FetchError{Kind: homework.FetchKindTransport, Err: err}
	}
	req.Header.Set("Authorization", "OAuth "+c.token)
	req.Header.Set("Accept", "application/json")

	logCtx := c.logger.WithField("from_date", cursor)
	logCtx.Debug("Requesting homework statuses")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logCtx.WithError(err).Error("Homework status API is unreachable")
		return nil, &homework.FetchError{Kind: homework.FetchKindTransport, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		logCtx.WithError(err).Error("Failed to read homework status response")
		return nil, &homework.FetchError{Kind: homework.FetchKindTransport, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		fetchErr := statusError(resp.StatusCode, body)
		logCtx.WithFields(logrus.Fields{
			"http_status": resp.StatusCode,
			"kind":        fetchErr.Kind,
		}).Error("Homework status API returned an error status")
		return nil, fetchErr
	}

	raw, err := decodeBody(body)
	if err != nil {
		logCtx.WithError(err).Error("Failed to parse homework status response")
		return nil, &homework.FetchError{Kind: homework.FetchKindDecode, StatusCode: resp.StatusCode, Err: err}
	}
	return raw, nil
}

// statusError classifies a non-200 response. A body carrying "code" or "error"
// is an explicit rejection by the API rather than a bare status failure.
func statusError(status int, body []byte) *homework.FetchError {
	if raw, err := decodeBody(body); err == nil {
		code, hasCode := raw[homework.FieldCode]
		msg, hasErr := raw[homework.FieldError]
		if hasCode || hasErr {
			return &homework.FetchError{
				Kind:       homework.FetchKindAPIError,
				StatusCode: status,
				Err:        fmt.Errorf("code=%v error=%v", code, msg),
			}
		}
	}
	return &homework.FetchError{
		Kind:       homework.FetchKindStatus,
		StatusCode: status,
		Err:        errors.New(http.StatusText(status)),
	}
}

func decodeBody(body []byte) (homework.RawResponse, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw homework.RawResponse
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("body is not a JSON object")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, errors.New("unexpected data after the JSON object")
	}
	return raw, nil
}
