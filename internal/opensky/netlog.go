package opensky

import (
	"net/http"
	"strings"
	"time"

	"github.com/five82/skytrack/internal/logger"
)

const bodyPreviewLimit = 512

// The log helpers are best effort: a panic while formatting must never change
// the outcome of a fetch.

func (c *Client) logRequest(req *http.Request, requestID string) {
	defer func() { _ = recover() }()
	c.log.Debug("opensky request",
		logger.String("request_id", requestID),
		logger.String("method", req.Method),
		logger.String("url", req.URL.String()),
		logger.Any("headers", flattenHeaders(req.Header)),
	)
}

func (c *Client) logResponse(requestID string, resp *http.Response, body []byte, err error, elapsed time.Duration) {
	defer func() { _ = recover() }()
	fields := []logger.Field{
		logger.String("request_id", requestID),
		logger.Duration("elapsed", elapsed),
	}
	if resp != nil {
		fields = append(fields,
			logger.Int("status", resp.StatusCode),
			logger.Any("headers", flattenHeaders(resp.Header)),
		)
	}
	if len(body) > 0 {
		fields = append(fields, logger.String("body", preview(body)))
	}
	if err != nil {
		fields = append(fields, logger.Error(err))
	}
	c.log.Debug("opensky response", fields...)
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = strings.Join(v, ", ")
	}
	return out
}

func preview(body []byte) string {
	if len(body) <= bodyPreviewLimit {
		return string(body)
	}
	return string(body[:bodyPreviewLimit]) + "…"
}
