package oemcert

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"dario.cat/mergo"
	"github.com/goccy/go-json"
	"github.com/root4loot/oemcert/pkg/log"
)

const (
	DefaultEndpoint = "https://cloud.clarius.com/api/public/v0/devices/oem/?format=json"
	AuthScheme      = "OEM-API-Key"

	maxErrorBody = 4 << 10
)

type Runner struct {
	Options *Options
}

type Options struct {
	Token      string       // OEM API key
	Endpoint   string       // devices endpoint, including query
	Timeout    int          // request deadline in seconds, negative disables it
	UserAgent  string       // user agent
	Debug      bool         // enable debug logging
	HTTPClient *http.Client // client used for the request
}

func DefaultOptions() *Options {
	return &Options{
		Endpoint:  DefaultEndpoint,
		Timeout:   30,
		UserAgent: "oemcert",
		Debug:     false,
		HTTPClient: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				DialContext:         (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
				ForceAttemptHTTP2:   true,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

func NewRunner() *Runner {
	return newRunner(nil)
}

func NewRunnerWithOptions(options *Options) *Runner {
	return newRunner(options)
}

func NewRunnerWithDefaultOptions() *Runner {
	return newRunner(DefaultOptions())
}

func newRunner(options *Options) *Runner {
	defaultOptions := DefaultOptions()

	if options != nil {
		// caller-supplied clients are used as is, never merged into
		client := options.HTTPClient
		options.HTTPClient = nil

		if err := mergo.Merge(options, defaultOptions); err != nil {
			log.Errorf("merge options: %v", err)
		}
		if client != nil {
			options.HTTPClient = client
		}
	} else {
		options = defaultOptions
	}

	if options.Debug {
		log.SetLevel(log.DebugLevel)
	}

	return &Runner{
		Options: options,
	}
}

// AuthorizationValue returns the Authorization header value for token.
func AuthorizationValue(token string) string {
	return AuthScheme + " " + token
}

// Query performs a single GET against the configured endpoint. Any status
// other than 200 is returned as a *StatusError without reading results.
func (r *Runner) Query(ctx context.Context) (*Response, error) {
	if r.Options.Token == "" {
		return nil, ErrEmptyToken
	}

	if r.Options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(r.Options.Timeout)*time.Second)
		defer cancel()
	}

	endpoint := r.Options.Endpoint
	log.Debugf("Querying %s", endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Authorization", AuthorizationValue(r.Options.Token))
	req.Header.Set("Accept", "application/json")
	if r.Options.UserAgent != "" {
		req.Header.Set("User-Agent", r.Options.UserAgent)
	}

	log.Debug("Sending HTTP request")
	resp, err := r.Options.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	log.Debug("Reading response body")
	return decodeResponse(resp.Body)
}

// Fetch queries the endpoint and returns the authenticated entries in
// response order.
func (r *Runner) Fetch(ctx context.Context) ([]Entry, error) {
	resp, err := r.Query(ctx)
	if err != nil {
		return nil, err
	}
	return Authenticated(resp.Results)
}

func decodeResponse(body io.Reader) (*Response, error) {
	var resp Response
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.Results == nil {
		return nil, ErrMissingResults
	}
	return &resp, nil
}
