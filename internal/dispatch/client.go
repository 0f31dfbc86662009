// Package dispatch implements the benchmark dispatch client (C7): the one
// RPC the orchestrator makes per adjusting-stage iteration, carried over a
// single-request/single-response bidirectional stream to an external load
// generator process.
//
// The source this controller was distilled from carries this RPC over
// gRPC bidi streaming (AdaptiveLoadController.PerformAdaptiveLoadSession
// in the protobuf service, consumed benchmark-by-benchmark). This
// implementation keeps the same call-then-stream-read shape but carries
// it over a websocket connection instead, grounded on the read/write
// deadline and single-connection-per-call pattern in the teacher's
// internal/websocket/hub.go (readPump/writePump): every dial sets its own
// deadlines rather than sharing a hub-wide keepalive loop, since a
// dispatch client makes one call and closes.
package dispatch

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nighthawk/adaptive-load/internal/logging"
	"github.com/nighthawk/adaptive-load/internal/model"
	"github.com/nighthawk/adaptive-load/internal/status"
)

// grace is added to a benchmark's duration to compute the client's
// deadline, per spec §4.7 ("generous_grace ... >= duration + 30s").
const grace = 30 * time.Second

// benchmarkRequest is the single message sent on a dispatch call.
type benchmarkRequest struct {
	TrafficSpec model.TrafficSpec `json:"traffic_spec"`
}

// benchmarkResponse is the single message a well-behaved load generator
// sends back before closing the stream.
type benchmarkResponse struct {
	ActualDurationNanos int64                 `json:"actual_duration_nanos"`
	UpstreamRqTotal     int64                 `json:"upstream_rq_total"`
	ResponseCount2xx    int64                 `json:"response_count_2xx"`
	LatencyMinNanos     int64                 `json:"latency_min_nanos"`
	LatencyMeanNanos    int64                 `json:"latency_mean_nanos"`
	LatencyMaxNanos     int64                 `json:"latency_max_nanos"`
	LatencyPStdevNanos  int64                 `json:"latency_pstdev_nanos"`
	Error               *benchmarkErrorDetail `json:"error,omitempty"`
}

type benchmarkErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Client dispatches benchmark requests to a load generator endpoint over
// websocket. The zero value is not usable; construct with NewClient.
type Client struct {
	endpoint string
	dialer   *websocket.Dialer
}

// NewClient returns a Client dialing endpoint (a ws:// or wss:// URL) for
// every RunBenchmark call.
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		dialer:   websocket.DefaultDialer,
	}
}

// RunBenchmark implements C7's single operation.
func (c *Client) RunBenchmark(ctx context.Context, spec model.TrafficSpec, duration time.Duration) (model.RawBenchmarkOutput, *status.Status) {
	log := logging.Dispatch()

	deadline := duration + grace
	dialCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	conn, _, err := c.dialer.DialContext(dialCtx, c.endpoint, http.Header{})
	if err != nil {
		log.Warn().Err(err).Str("endpoint", c.endpoint).Msg("could not dial load generator")
		return model.RawBenchmarkOutput{}, status.Newf(status.Unavailable, "could not dial load generator: %v", err)
	}
	defer conn.Close()
	stopCancelWatch := context.AfterFunc(ctx, func() { conn.Close() })
	defer stopCancelWatch()

	sendSpec := spec.Clone()
	d := model.Duration(duration)
	sendSpec.Duration = &d
	openLoop := true
	sendSpec.OpenLoop = &openLoop

	deadlineAt := time.Now().Add(deadline)
	conn.SetWriteDeadline(deadlineAt)
	if err := conn.WriteJSON(benchmarkRequest{TrafficSpec: sendSpec}); err != nil {
		return model.RawBenchmarkOutput{}, status.Newf(status.Unavailable, "could not send benchmark request: %v", err)
	}
	if err := conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")); err != nil {
		log.Debug().Err(err).Msg("could not send close after request")
	}

	var (
		received bool
		resp     benchmarkResponse
	)
	for {
		conn.SetReadDeadline(deadlineAt)
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				break
			}
			if received {
				// First response already captured; a transport error on
				// the way to closure does not retroactively invalidate it.
				break
			}
			if ctx.Err() != nil {
				return model.RawBenchmarkOutput{}, status.New(status.Cancelled, "benchmark cancelled")
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return model.RawBenchmarkOutput{}, status.Newf(status.DeadlineExceeded, "benchmark exceeded deadline of %v", deadline)
			}
			return model.RawBenchmarkOutput{}, status.Newf(status.Unavailable, "load generator stream closed abnormally: %v", err)
		}
		if received {
			log.Warn().Msg("ignoring extra message on benchmark stream after first response")
			continue
		}
		if err := json.Unmarshal(data, &resp); err != nil {
			return model.RawBenchmarkOutput{}, status.Newf(status.Unavailable, "could not decode benchmark response: %v", err)
		}
		received = true
	}

	if !received {
		return model.RawBenchmarkOutput{}, status.New(status.Unknown, "load generator did not send a response")
	}

	out := model.RawBenchmarkOutput{
		TrafficSpec:      sendSpec,
		ActualDuration:   time.Duration(resp.ActualDurationNanos),
		UpstreamRqTotal:  resp.UpstreamRqTotal,
		ResponseCount2xx: resp.ResponseCount2xx,
		RequestToResponse: model.LatencyStats{
			Min:    time.Duration(resp.LatencyMinNanos),
			Mean:   time.Duration(resp.LatencyMeanNanos),
			Max:    time.Duration(resp.LatencyMaxNanos),
			PStdev: time.Duration(resp.LatencyPStdevNanos),
		},
	}
	if resp.Error != nil {
		out.ErrorDetail = status.New(codeFromString(resp.Error.Code), resp.Error.Message)
	}
	return out, status.Success()
}

func codeFromString(s string) status.Code {
	switch s {
	case "InvalidArgument":
		return status.InvalidArgument
	case "NotFound":
		return status.NotFound
	case "FailedPrecondition":
		return status.FailedPrecondition
	case "DeadlineExceeded":
		return status.DeadlineExceeded
	case "Cancelled":
		return status.Cancelled
	case "Unavailable":
		return status.Unavailable
	case "Internal":
		return status.Internal
	default:
		return status.Unknown
	}
}
