package rate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/infigaming-com/gold-monitor/errors"
	"github.com/infigaming-com/gold-monitor/request"
	"github.com/infigaming-com/gold-monitor/util"
	"go.uber.org/zap"
)

const DefaultTreasuryURL = "https://api.treasury.id/api/v1/antigrvty/gold/rate"

type treasuryRateProvider struct {
	lg            *zap.Logger
	url           string
	method        string
	timeout       time.Duration
	slowThreshold time.Duration
	headers       map[string]string
	debug         bool
	client        *http.Client
}

type TreasuryOption func(*treasuryRateProvider)

func WithMethod(method string) TreasuryOption {
	return func(p *treasuryRateProvider) {
		if method != "" {
			p.method = strings.ToUpper(method)
		}
	}
}

func WithTimeout(timeout time.Duration) TreasuryOption {
	return func(p *treasuryRateProvider) {
		if timeout > 0 {
			p.timeout = timeout
		}
	}
}

// WithSlowThreshold logs fetches slower than d. Default: 5s.
func WithSlowThreshold(d time.Duration) TreasuryOption {
	return func(p *treasuryRateProvider) {
		if d > 0 {
			p.slowThreshold = d
		}
	}
}

// WithHeaders adds headers to every feed request.
func WithHeaders(headers map[string]string) TreasuryOption {
	return func(p *treasuryRateProvider) {
		p.headers = headers
	}
}

// WithDebug logs every feed exchange at debug level.
func WithDebug(debug bool) TreasuryOption {
	return func(p *treasuryRateProvider) {
		p.debug = debug
	}
}

func WithHttpClient(client *http.Client) TreasuryOption {
	return func(p *treasuryRateProvider) {
		p.client = client
	}
}

type treasuryResponse struct {
	Data *struct {
		BuyingRate  any `json:"buying_rate"`
		SellingRate any `json:"selling_rate"`
		UpdatedAt   any `json:"updated_at"`
	} `json:"data"`
}

func NewTreasuryRateProvider(lg *zap.Logger, url string, opts ...TreasuryOption) RateProvider {
	p := &treasuryRateProvider{
		lg:            lg,
		url:           url,
		method:        http.MethodPost,
		timeout:       10 * time.Second,
		slowThreshold: 5 * time.Second,
	}
	if p.url == "" {
		p.url = DefaultTreasuryURL
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *treasuryRateProvider) Latest(ctx context.Context) (*Quote, error) {
	opts := []request.Option{
		request.WithLogger(p.lg),
		request.WithDebugEnabled(p.debug),
		request.WithRequestTimeout(p.timeout),
		request.WithSlowRequestThreshold(p.slowThreshold),
		request.WithRequestHeaders(p.headers),
		request.WithHttpClient(p.client),
	}

	var (
		statusCode   int
		responseBody []byte
		err          error
	)
	switch p.method {
	case http.MethodPost:
		// the feed takes an empty POST
		statusCode, responseBody, err = request.Post(ctx, p.url, nil, opts...)
	case http.MethodGet:
		statusCode, responseBody, err = request.Get(ctx, p.url, opts...)
	default:
		statusCode, responseBody, err = request.Request(ctx, p.method, p.url, opts...)
	}
	if err != nil {
		return nil, errors.NewError(ErrCodeFeedRequest, "feed request failed", err)
	}
	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		return nil, errors.NewError(ErrCodeFeedStatus, fmt.Sprintf("feed status code: %d", statusCode), nil).
			WithStatusCode(statusCode).
			WithDetails(string(responseBody))
	}
	return parseTreasuryResponse(responseBody)
}

func parseTreasuryResponse(body []byte) (*Quote, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var resp treasuryResponse
	if err := decoder.Decode(&resp); err != nil {
		return nil, errors.NewError(ErrCodeFeedPayload, "malformed feed payload", err)
	}
	if resp.Data == nil {
		return nil, errors.NewError(ErrCodeFeedPayload, "feed payload has no data", nil)
	}

	buy, err := util.NewDecimal(resp.Data.BuyingRate)
	if err != nil {
		return nil, errors.NewError(ErrCodeFeedPayload, "invalid buying_rate", err)
	}
	sell, err := util.NewDecimal(resp.Data.SellingRate)
	if err != nil {
		return nil, errors.NewError(ErrCodeFeedPayload, "invalid selling_rate", err)
	}

	return &Quote{
		BuyRate:   buy.IntPart(),
		SellRate:  sell.IntPart(),
		UpdatedAt: timestampString(resp.Data.UpdatedAt),
	}, nil
}

// timestampString keeps updated_at opaque: strings are trimmed, numbers keep
// their literal form and null is empty.
func timestampString(v any) string {
	switch ts := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(ts)
	case json.Number:
		return ts.String()
	default:
		return fmt.Sprint(ts)
	}
}
