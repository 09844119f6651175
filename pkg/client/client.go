// Package client provides the transport client for the chat widget. It sends
// one message per HTTP request to the configured backend endpoint and yields
// the response as a lazy sequence of sse.Frame values: every decoded frame of
// a streamed body as it arrives, or the single result of a JSON body.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/chatwidget/pkg/sse"
)

// RequestIDHeader carries a per-request UUID for correlating client and
// backend logs.
const RequestIDHeader = "X-Request-ID"

// maxErrorBodySize bounds how much of a non-2xx body is read looking for a detail.
const maxErrorBodySize = 1 << 20

// Config is the transport client configuration.
type Config struct {
	// Endpoint is the full backend URL (e.g., "http://localhost:8000/llm").
	Endpoint string

	// Timeout bounds the whole exchange, including reading a streamed body.
	// Zero means no timeout: the request runs until it completes, fails or
	// its context is canceled.
	Timeout time.Duration

	// HTTPClient overrides the default HTTP client. Timeout is ignored when set.
	HTTPClient *http.Client

	// StreamDump, if set, receives a verbatim copy of every streamed body.
	StreamDump io.Writer
}

// Client sends chat messages to a single backend endpoint. It holds no
// per-request state and is safe for concurrent use.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a new Client. A nil logger discards all output.
func New(config Config, logger *slog.Logger) (*Client, error) {
	if config.Endpoint == "" {
		return nil, errors.New("endpoint is required")
	}

	u, err := url.Parse(config.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing endpoint: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint %q: expected an http(s) URL", config.Endpoint)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Endpoint returns the backend URL the client posts to.
func (c *Client) Endpoint() string {
	return c.config.Endpoint
}

// Send posts message to the endpoint and returns the response as a sequence
// of frames. The request is issued when iteration starts. A failure is
// yielded once as a *RequestError with a zero Frame, after which the
// sequence ends; frames yielded before a mid-stream failure stay valid.
//
// The response body is released on every exit path, including when the
// caller stops iterating early.
func (c *Client) Send(ctx context.Context, message string) iter.Seq2[sse.Frame, error] {
	return func(yield func(sse.Frame, error) bool) {
		requestID := uuid.NewString()
		logger := c.logger.With("request_id", requestID)

		resp, err := c.post(ctx, message, requestID, logger)
		if err != nil {
			yield(sse.Frame{}, err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			reqErr := readError(resp)
			logger.Debug("backend returned error",
				"status", resp.StatusCode,
				"error", reqErr.Message,
			)
			yield(sse.Frame{}, reqErr)
			return
		}

		contentType := resp.Header.Get("Content-Type")
		if isStreaming(contentType) {
			c.stream(resp.Body, logger, yield)
			return
		}

		frame, ok, err := readResult(resp.Body)
		if err != nil {
			logger.Debug("failed to decode response body", "error", err)
			yield(sse.Frame{}, err)
			return
		}
		if ok {
			yield(frame, nil)
		}
	}
}

func (c *Client) post(ctx context.Context, message, requestID string, logger *slog.Logger) (*http.Response, error) {
	body, err := json.Marshal(Request{Message: message})
	if err != nil {
		return nil, newRequestError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, newRequestError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	logger.Debug("sending chat request",
		"endpoint", c.config.Endpoint,
		"message_length", len(message),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Debug("chat request failed", "error", err)
		return nil, newRequestError(err)
	}

	logger.Debug("received response",
		"status", resp.StatusCode,
		"content_type", resp.Header.Get("Content-Type"),
	)

	return resp, nil
}

// stream decodes a framed body and yields each Frame as soon as it is complete.
func (c *Client) stream(body io.Reader, logger *slog.Logger, yield func(sse.Frame, error) bool) {
	r := sse.NewTeeReader(body, c.config.StreamDump)

	frames := 0
	for {
		frame, err := r.Next()
		if err != nil {
			logger.Debug("error reading stream", "error", err, "frames", frames)
			yield(sse.Frame{}, newRequestError(err))
			return
		}
		if frame == nil {
			logger.Debug("stream complete", "frames", frames)
			return
		}

		frames++
		if !yield(*frame, nil) {
			return
		}
	}
}

// isStreaming reports whether a Content-Type denotes a framed, line-oriented body.
func isStreaming(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text/event-stream") || strings.Contains(ct, "text/plain")
}

// readResult parses a buffered JSON body and converts its result to a Frame.
// It reports false when the body carries no result.
func readResult(body io.Reader) (sse.Frame, bool, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return sse.Frame{}, false, newRequestError(err)
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return sse.Frame{}, false, newRequestError(err)
	}

	text, ok, err := ResultText(resp.Result)
	if err != nil {
		return sse.Frame{}, false, newRequestError(err)
	}
	if !ok {
		return sse.Frame{}, false, nil
	}

	return sse.DataFrame(text), true, nil
}

// ResultText converts a raw JSON result to display text. A JSON string is
// returned as is; any other value, null included, is pretty-printed with
// two-space indentation. It reports false only when the result key is absent.
func ResultText(raw json.RawMessage) (string, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", false, nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", false, err
		}
		return s, true, nil
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, trimmed, "", "  "); err != nil {
		return "", false, err
	}
	return buf.String(), true, nil
}

// readError builds the RequestError for a non-2xx response, preferring the
// server-supplied detail over the generic status message.
func readError(resp *http.Response) *RequestError {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if err != nil {
		return statusError(resp.StatusCode)
	}

	var body ErrorResponse
	if err := json.Unmarshal(data, &body); err != nil {
		return statusError(resp.StatusCode)
	}

	if detail := detailText(body.Detail); detail != "" {
		return &RequestError{Message: detail}
	}
	return statusError(resp.StatusCode)
}

// detailText renders a detail value. Falsy values (null, false, any numeric
// zero, "") yield "" so the caller falls back to the status message; other
// non-string values are compacted JSON.
func detailText(raw json.RawMessage) string {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return ""
	}

	switch d := v.(type) {
	case nil:
		return ""
	case string:
		return d
	case bool:
		if !d {
			return ""
		}
	case json.Number:
		if f, err := d.Float64(); err == nil && f == 0 {
			return ""
		}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return ""
	}
	return buf.String()
}
