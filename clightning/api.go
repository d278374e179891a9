package clightning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type api struct {
	BaseURL      string
	macaroon     string
	logger       *zap.Logger
	httpClient   *retryablehttp.Client
	interceptors []InterceptorFunc
}

// NewAPI creates a c-lightning-REST api. macaroon is the hex encoded
// access macaroon sent with every request.
func NewAPI(baseURL, macaroon string) *api {
	return &api{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		macaroon:   macaroon,
		logger:     zap.NewNop(),
		httpClient: defaultHttpClient(),
	}
}

// apiError is an error reported by the REST server or the node behind it.
type apiError struct {
	Status  int
	Code    int
	Message string
}

func (e *apiError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("http %d: rpc error %d: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

func (a *api) do(req *http.Request) (*http.Response, error) {
	e := a.call
	is := a.interceptors
	for i := len(is) - 1; i >= 0; i-- {
		e = is[i](e)
	}
	return e(req)
}

func (a *api) call(req *http.Request) (*http.Response, error) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("macaroon", a.macaroon)
	req.Header.Set("encodingtype", "hex")
	rReq, err := retryablehttp.FromRequest(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create api request")
	}
	res, err := a.httpClient.Do(rReq)
	if err != nil {
		return nil, errors.Wrap(err, "failed to call api request")
	}
	return res, nil
}

func (a *api) drain(res *http.Response) {
	defer func() {
		_ = res.Body.Close()
	}()
	_, err := io.Copy(io.Discard, res.Body)
	if err != nil {
		a.logger.Warn("failed to drain response body")
	}
}

func (a *api) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return a.request(ctx, http.MethodGet, path, query, nil, out)
}

func (a *api) post(ctx context.Context, path string, body, out interface{}) error {
	return a.request(ctx, http.MethodPost, path, nil, body, out)
}

func (a *api) delete(ctx context.Context, path string, query url.Values, out interface{}) error {
	return a.request(ctx, http.MethodDelete, path, query, nil, out)
}

func (a *api) request(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := a.BaseURL + "/v1/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "failed to encode request body")
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	res, err := a.do(req)
	if err != nil {
		return err
	}
	defer a.drain(res)

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}
	a.logger.Debug("api response",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", res.StatusCode))

	if apiErr := parseAPIError(res.StatusCode, raw); apiErr != nil {
		return apiErr
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(err, "failed to decode %s response", path)
	}
	return nil
}

// parseAPIError extracts the error of a response. The server reports node
// errors both with an error status and inside 200 responses.
func parseAPIError(status int, raw []byte) *apiError {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		_ = json.Unmarshal(trimmed, &envelope)
	}
	if len(envelope.Error) > 0 && string(envelope.Error) != "null" {
		apiErr := &apiError{Status: status}
		var detail struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(envelope.Error, &detail); err == nil {
			apiErr.Code = detail.Code
			apiErr.Message = detail.Message
		} else {
			var msg string
			if err := json.Unmarshal(envelope.Error, &msg); err == nil {
				apiErr.Message = msg
			} else {
				apiErr.Message = string(envelope.Error)
			}
		}
		return apiErr
	}
	if status >= http.StatusBadRequest {
		return &apiError{Status: status, Message: strings.TrimSpace(string(raw))}
	}
	return nil
}

// getList fetches a list endpoint. Depending on the server version lists come
// bare or wrapped in an object under key.
func getList[T any](ctx context.Context, a *api, path string, query url.Values, key string) ([]T, error) {
	var raw json.RawMessage
	if err := a.get(ctx, path, query, &raw); err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return []T{}, nil
	}
	if raw[0] != '[' {
		var wrapped map[string]json.RawMessage
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, errors.Wrapf(err, "failed to decode %s response", path)
		}
		raw = wrapped[key]
		if len(raw) == 0 {
			return []T{}, nil
		}
	}
	items := []T{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s response", path)
	}
	return items, nil
}
