package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/content"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/apperrors"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/metrics"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/request"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/session"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/validation"
)

// Client performs authenticated calls against the platform REST backend.
// It never retries and never caches; callers apply the results.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
	now    func() time.Time
}

// New creates a client for the backend at baseURL.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetLogger(restyLogger{logger: logger}).
		SetHeader("Accept", "application/json")

	return &Client{
		http:   httpClient,
		logger: logger,
		now:    time.Now,
	}
}

// send runs one backend call and returns the 2xx body.
func (c *Client) send(ctx context.Context, sess session.Session, op, method, path string, prepare func(*resty.Request)) ([]byte, error) {
	if err := sess.Require(c.now()); err != nil {
		metrics.RecordGatewayCall(op, string(apperrors.ErrUnauthorized), 0)
		return nil, err
	}

	requestID := request.IDFromContext(ctx)
	req := c.http.R().
		SetContext(ctx).
		SetAuthToken(sess.Token)
	if requestID != "" {
		req.SetHeader(request.IDHeader, requestID)
	}
	if prepare != nil {
		prepare(req)
	}

	start := time.Now()
	resp, err := req.Execute(method, path)
	elapsed := time.Since(start)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			metrics.RecordGatewayCall(op, string(apperrors.ErrCancelled), elapsed)
			return nil, apperrors.Cancelled(ctxErr)
		}
		metrics.RecordGatewayCall(op, string(apperrors.ErrTransport), elapsed)
		c.logger.ErrorContext(ctx, "backend unreachable",
			slog.String("operation", op),
			slog.String("request_id", requestID),
			slog.String("error", err.Error()))
		return nil, apperrors.Transport(err)
	}

	status := resp.StatusCode()
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		metrics.RecordGatewayCall(op, string(apperrors.ErrHTTP), elapsed)
		message := errorMessage(resp.Body())
		c.logger.WarnContext(ctx, "backend rejected request",
			slog.String("operation", op),
			slog.Int("status", status),
			slog.String("request_id", requestID),
			slog.String("message", message))
		return nil, apperrors.HTTPStatus(status, message)
	}

	metrics.RecordGatewayCall(op, "ok", elapsed)
	return resp.Body(), nil
}

// HealthCheck performs the advisory connectivity probe. It needs no session.
func (c *Client) HealthCheck(ctx context.Context) error {
	start := time.Now()
	resp, err := c.http.R().SetContext(ctx).Get("/health-check")
	elapsed := time.Since(start)

	if err != nil {
		metrics.RecordGatewayCall("health_check", string(apperrors.ErrTransport), elapsed)
		return apperrors.Transport(err)
	}
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		metrics.RecordGatewayCall("health_check", string(apperrors.ErrHTTP), elapsed)
		return apperrors.HTTPStatus(resp.StatusCode(), errorMessage(resp.Body()))
	}

	metrics.RecordGatewayCall("health_check", "ok", elapsed)
	return nil
}

// errorMessage reads {"message": ...} from an error body. Anything else yields "".
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Message)
}

// unwrap returns the "data" member of an enveloped body, or the body itself.
func unwrap(body []byte) []byte {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return trimmed
	}
	if len(envelope.Data) == 0 || bytes.Equal(envelope.Data, []byte("null")) {
		return trimmed
	}
	return envelope.Data
}

// decodeOne decodes and validates a single entity payload.
func decodeOne[T any](what string, body []byte) (T, error) {
	var out T
	if err := json.Unmarshal(unwrap(body), &out); err != nil {
		return out, apperrors.Decode(what, err)
	}
	if err := checkShape(what, out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// decodeList decodes and validates a list payload.
func decodeList[T any](what string, body []byte) ([]T, error) {
	var out []T
	if err := json.Unmarshal(unwrap(body), &out); err != nil {
		return nil, apperrors.Decode(what, err)
	}
	for i := range out {
		if err := checkShape(what, out[i]); err != nil {
			return nil, err
		}
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func checkShape(what string, v interface{}) error {
	fields, err := validation.Struct(v)
	if err != nil {
		return apperrors.Decode(what, err)
	}
	if len(fields) > 0 {
		return apperrors.Decode(what, fmt.Errorf("invalid fields: %v", fields)).WithFields(fields)
	}
	return nil
}

func entityPath(kind, format, id string) (string, error) {
	normalized, err := validation.NormalizeID(kind, id)
	if err != nil {
		return "", apperrors.Validation(err.Error(), map[string]string{kind + "Id": err.Error()})
	}
	return fmt.Sprintf(format, normalized), nil
}

func attach(r *resty.Request, field string, u *content.Upload) {
	if u == nil || u.Reader == nil {
		return
	}
	name := u.FileName
	if name == "" {
		name = field
	}
	r.SetFileReader(field, name, u.Reader)
}

type restyLogger struct {
	logger *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...), slog.String("component", "gateway"))
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, v...), slog.String("component", "gateway"))
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...), slog.String("component", "gateway"))
}
