package url

import (
	"fmt"
	"net/http"
)

// StatusExpectation determines whether a given HTTP status code counts as a
// completed round trip.
type StatusExpectation func(status int) bool

// RequestMutator allows callers to tweak the outbound request prior to dispatch.
type RequestMutator func(req *http.Request) error

// Option configures the behaviour of NewProbe.
type Option func(*probeConfig)

type probeConfig struct {
	newClient       func() *http.Client
	method          string
	expect          StatusExpectation
	requestMutators []RequestMutator
}

func buildProbeConfig(opts ...Option) *probeConfig {
	cfg := &probeConfig{
		newClient: freshClient,
		method:    http.MethodGet,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.newClient == nil {
		cfg.newClient = freshClient
	}
	return cfg
}

// freshClient returns a client with its own transport and keep-alives off, so
// every probe dials a new connection.
func freshClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DisableKeepAlives = true
	return &http.Client{Transport: transport}
}

func (c *probeConfig) applyMutators(req *http.Request) error {
	for _, mutate := range c.requestMutators {
		if mutate == nil {
			continue
		}
		if err := mutate(req); err != nil {
			return err
		}
	}
	return nil
}

func (c *probeConfig) validateResponse(resp *http.Response) error {
	if c.expect != nil && !c.expect(resp.StatusCode) {
		return fmt.Errorf("unexpected status %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return nil
}

// WithClientFactory overrides how the per-probe HTTP client is built.
func WithClientFactory(newClient func() *http.Client) Option {
	return func(cfg *probeConfig) {
		cfg.newClient = newClient
	}
}

// WithMethod sets the request method. Empty keeps GET.
func WithMethod(method string) Option {
	return func(cfg *probeConfig) {
		if method != "" {
			cfg.method = method
		}
	}
}

// WithAllowedStatuses restricts the probe to succeed only for the provided
// status codes. With no codes every status is accepted.
func WithAllowedStatuses(statuses ...int) Option {
	allowed := make(map[int]struct{}, len(statuses))
	for _, status := range statuses {
		allowed[status] = struct{}{}
	}
	return func(cfg *probeConfig) {
		if len(allowed) == 0 {
			cfg.expect = nil
			return
		}
		cfg.expect = func(status int) bool {
			_, ok := allowed[status]
			return ok
		}
	}
}

// WithHeaders sets fixed request headers.
func WithHeaders(headers map[string]string) Option {
	return WithRequestMutator(func(req *http.Request) error {
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return nil
	})
}

// WithRequestMutator registers a mutator that runs before the request is dispatched.
func WithRequestMutator(mutator RequestMutator) Option {
	return func(cfg *probeConfig) {
		cfg.requestMutators = append(cfg.requestMutators, mutator)
	}
}
