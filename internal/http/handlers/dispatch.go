package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskapi/internal/api"
)

const msgBodyTooLarge = "Request body too large"

// Dispatch turns the request into an api.Event, runs it under the request
// deadline and writes the api.Response back unchanged.
func (h *Handler) Dispatch(c *gin.Context) {
	ctx := c.Request.Context()
	if h.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.RequestTimeout)
		defer cancel()
	}

	ev, err := h.eventFromRequest(c)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": msgBodyTooLarge})
			return
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": api.MsgInvalidBody})
		return
	}

	writeResponse(c, h.Dispatcher.Handle(ctx, ev))
}

func (h *Handler) eventFromRequest(c *gin.Context) (api.Event, error) {
	ev := api.Event{
		Method:  c.Request.Method,
		Path:    c.Request.URL.Path,
		Headers: make(map[string]string, len(c.Request.Header)),
	}
	for k, v := range c.Request.Header {
		if len(v) > 0 {
			ev.Headers[k] = v[0]
		}
	}

	if c.Request.Body == nil {
		return ev, nil
	}
	limit := h.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, limit))
	if err != nil {
		return ev, err
	}
	ev.Body = string(body)
	return ev, nil
}

func writeResponse(c *gin.Context, resp api.Response) {
	for k, v := range resp.Headers {
		c.Header(k, v)
	}
	if resp.Body == "" {
		c.Status(resp.StatusCode)
		return
	}
	c.Data(resp.StatusCode, resp.Headers["Content-Type"], []byte(resp.Body))
}
