package registry

import (
	"context"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"

	"github.com/synchub/synchub/internal/hub/model"
	"github.com/synchub/synchub/internal/hub/repo"
	"github.com/synchub/synchub/pkg/log"
	"github.com/synchub/synchub/pkg/metrics"
)

const maxRecordedBody = 64 << 10

type callLogKey struct{}
type putCodeKey struct{}

// attachCallLogging composes request/response middleware onto the resty
// client: an APICallLog audit row per call, a call counter, and a debug
// line with timing. Audit failures are logged and never fail the call.
func attachCallLogging(client *resty.Client, userID uint64, calls repo.IAPICallRepository) {
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		call := &model.APICallLog{
			UserID: userID,
			Method: req.Method,
			URL:    req.URL,
		}
		if putCode, ok := req.Context().Value(putCodeKey{}).(*int64); ok {
			call.PutCode = putCode
		}
		if req.Body != nil {
			if body, err := sonic.Marshal(req.Body); err == nil {
				call.Body = truncate(string(body), maxRecordedBody)
			}
		}
		if calls != nil {
			if err := calls.Create(call); err != nil {
				log.Errorf("recording registry call: %v", err)
			}
		}
		req.SetContext(context.WithValue(req.Context(), callLogKey{}, call))
		return nil
	})
	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		metrics.RegistryCalls.WithLabelValues(resp.Request.Method, strconv.Itoa(resp.StatusCode())).Inc()
		call, ok := resp.Request.Context().Value(callLogKey{}).(*model.APICallLog)
		if !ok {
			return nil
		}
		call.Status = resp.StatusCode()
		call.Response = truncate(string(resp.Body()), maxRecordedBody)
		call.ResponseTimeMS = resp.Time().Milliseconds()
		if calls != nil {
			if err := calls.Update(call); err != nil {
				log.Errorf("recording registry response: %v", err)
			}
		}
		log.Debugw("registry call",
			"method", call.Method, "url", call.URL,
			"status", call.Status, "ms", call.ResponseTimeMS)
		return nil
	})
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
