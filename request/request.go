package request

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"sync"
	"time"

	commonerrors "github.com/infigaming-com/gold-monitor/errors"
	"github.com/infigaming-com/gold-monitor/util"
	"go.uber.org/zap"
)

const CorrelationIdHeader = "X-Correlation-ID"

var (
	httpClient *http.Client
	once       sync.Once
)

type requestOption struct {
	lg                   *zap.Logger
	debugEnabled         bool
	client               *http.Client
	requestHeaders       map[string]string
	requestBody          []byte
	requestTimeout       time.Duration
	slowRequestThreshold time.Duration
}

type Option interface {
	apply(option *requestOption) error
}

type optionFunc func(option *requestOption) error

func (f optionFunc) apply(option *requestOption) error {
	return f(option)
}

func defaultRequestOption() *requestOption {
	return &requestOption{
		lg:                   zap.L(),
		client:               getHttpClient(),
		requestHeaders:       map[string]string{},
		requestTimeout:       3 * time.Second,
		slowRequestThreshold: 5 * time.Second,
	}
}

func WithLogger(lg *zap.Logger) Option {
	return optionFunc(func(option *requestOption) error {
		option.lg = lg
		return nil
	})
}

// WithDebugEnabled logs every successful exchange, response body included.
func WithDebugEnabled(debugEnabled bool) Option {
	return optionFunc(func(option *requestOption) error {
		option.debugEnabled = debugEnabled
		return nil
	})
}

// WithHttpClient replaces the shared client, mostly for tests.
func WithHttpClient(client *http.Client) Option {
	return optionFunc(func(option *requestOption) error {
		if client != nil {
			option.client = client
		}
		return nil
	})
}

func WithRequestHeaders(requestHeaders map[string]string) Option {
	return optionFunc(func(option *requestOption) error {
		maps.Copy(option.requestHeaders, requestHeaders)
		return nil
	})
}

func WithRequestTimeout(requestTimeout time.Duration) Option {
	return optionFunc(func(option *requestOption) error {
		option.requestTimeout = requestTimeout
		return nil
	})
}

func WithSlowRequestThreshold(slowRequestThreshold time.Duration) Option {
	return optionFunc(func(option *requestOption) error {
		if slowRequestThreshold <= 0 {
			return commonerrors.NewError(
				ErrCodeInvalidSlowRequestThreshold,
				fmt.Sprintf("invalid slow request threshold: %v", slowRequestThreshold),
				nil,
			)
		}
		option.slowRequestThreshold = slowRequestThreshold
		return nil
	})
}

func getHttpClient() *http.Client {
	once.Do(func() {
		httpClient = &http.Client{
			Timeout: 0,
		}
	})
	return httpClient
}

// Request sends exactly one HTTP request. A non-2xx status is not an error;
// callers inspect httpStatusCode themselves.
func Request(ctx context.Context, method string, requestUrl string, options ...Option) (httpStatusCode int, responseBody []byte, err error) {
	start := time.Now()

	option := defaultRequestOption()
	for _, opt := range options {
		if err := opt.apply(option); err != nil {
			return 0, nil, err
		}
	}

	defer func() {
		if err != nil {
			option.lg.Warn("[HTTP-REQUEST-ERROR]",
				zap.Error(err),
				zap.String("method", method),
				zap.String("url", requestUrl),
				zap.ByteString("requestBody", option.requestBody),
				zap.Int("httpStatusCode", httpStatusCode),
				zap.Duration("duration", time.Since(start)),
			)
			return
		}

		if option.debugEnabled {
			option.lg.Debug("[HTTP-REQUEST-DEBUG]",
				zap.String("method", method),
				zap.String("url", requestUrl),
				zap.Any("requestHeaders", option.requestHeaders),
				zap.ByteString("requestBody", option.requestBody),
				zap.Int("httpStatusCode", httpStatusCode),
				zap.ByteString("responseBody", responseBody),
				zap.Duration("duration", time.Since(start)),
			)
		}
	}()

	return doRequest(ctx, method, requestUrl, option)
}

func doRequest(ctx context.Context, method string, requestUrl string, option *requestOption) (int, []byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, option.requestTimeout)
	defer cancel()

	var bodyReader io.Reader
	if len(option.requestBody) > 0 {
		bodyReader = bytes.NewReader(option.requestBody)
	}
	req, err := http.NewRequestWithContext(timeoutCtx, method, requestUrl, bodyReader)
	if err != nil {
		return 0, nil, commonerrors.NewError(ErrCodeFailedToCreateRequest, "failed to create request", err)
	}

	correlationId, err := util.CorrelationIdFromCtx(ctx)
	if err != nil {
		correlationId = util.NewUUID()
	}
	req.Header.Set(CorrelationIdHeader, correlationId)
	for k, v := range option.requestHeaders {
		req.Header.Set(k, v)
	}

	requestStart := time.Now()
	resp, err := option.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return 0, nil, commonerrors.NewError(ErrCodeRequestTimeout, "request timeout", err)
		}
		return 0, nil, commonerrors.NewError(ErrCodeFailedToSendRequest, "failed to send request", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, commonerrors.NewError(ErrCodeFailedToReadResponseBody, "failed to read response body", err)
	}

	if requestDuration := time.Since(requestStart); requestDuration > option.slowRequestThreshold {
		option.lg.Warn("[HTTP-REQUEST-SLOW]",
			zap.String("method", method),
			zap.String("url", requestUrl),
			zap.Int("httpStatusCode", resp.StatusCode),
			zap.Duration("duration", requestDuration),
		)
	}

	return resp.StatusCode, responseBody, nil
}

func Get(ctx context.Context, requestUrl string, options ...Option) (httpStatusCode int, responseBody []byte, err error) {
	return Request(ctx, http.MethodGet, requestUrl, options...)
}

// Post sends requestBody as JSON. An empty body is sent without a payload.
func Post(ctx context.Context, requestUrl string, requestBody []byte, options ...Option) (httpStatusCode int, responseBody []byte, err error) {
	options = append(options,
		WithRequestHeaders(map[string]string{"Content-Type": "application/json"}),
		optionFunc(func(option *requestOption) error {
			option.requestBody = requestBody
			return nil
		}),
	)
	return Request(ctx, http.MethodPost, requestUrl, options...)
}
