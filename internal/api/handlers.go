package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/julianshen/repodoc/internal/pipeline"
)

// HandleHealth returns server health status.
func (s *Server) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": s.opts.Version,
	})
}

// HandleAnalyze runs one analysis. Clients that accept text/event-stream
// receive progress events followed by a result or error event; everyone
// else gets a single JSON response.
func (s *Server) HandleAnalyze(c echo.Context) error {
	var body AnalyzeRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	req, apiErr := body.toPipelineRequest(s.opts.AllowLocal)
	if apiErr != nil {
		return apiErr
	}

	if wantsEventStream(c.Request()) {
		return s.streamAnalyze(c, req)
	}

	result, err := s.analyzer.Run(c.Request().Context(), req, nil)
	if err != nil {
		return FromRunError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func wantsEventStream(r *http.Request) bool {
	return strings.Contains(r.Header.Get(echo.HeaderAccept), "text/event-stream")
}

type runOutcome struct {
	result *pipeline.AnalysisResult
	err    error
}

func (s *Server) streamAnalyze(c echo.Context, req pipeline.Request) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	obs := pipeline.NewChannelObserver()
	done := make(chan runOutcome, 1)
	go func() {
		result, err := s.analyzer.Run(c.Request().Context(), req, obs)
		obs.Close()
		done <- runOutcome{result: result, err: err}
	}()

	for evt := range obs.Events() {
		if err := writeEvent(res, "progress", evt); err != nil {
			s.logger.Debug("progress write failed", "error", err)
		}
	}

	out := <-done
	if out.err != nil {
		return writeEvent(res, "error", FromRunError(out.err))
	}
	return writeEvent(res, "result", out.result)
}

func writeEvent(res *echo.Response, name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", name, err)
	}
	if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return err
	}
	res.Flush()
	return nil
}
