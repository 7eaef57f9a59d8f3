// Package url probes a plain HTTP endpoint. The measured interval runs from
// the moment a connection is available to the end of the response body;
// dialing and the TLS handshake are excluded.
package url

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"strings"
	"time"

	"github.com/shadabshaukat/DELTAV2/pkg/config"
	"github.com/shadabshaukat/DELTAV2/pkg/plugin"
)

func init() {
	plugin.RegisterProbe("url", New)
}

type Probe struct {
	target string
	cfg    *probeConfig
}

func New(cfg *config.Config) (plugin.Probe, error) {
	p, err := NewProbe(cfg.URL.Target,
		WithMethod(strings.ToUpper(strings.TrimSpace(cfg.URL.Method))),
		WithHeaders(cfg.URL.Headers),
		WithAllowedStatuses(cfg.URL.AllowedStatuses...),
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func NewProbe(target string, opts ...Option) (*Probe, error) {
	trimmed := strings.TrimSpace(target)
	if trimmed == "" {
		return nil, plugin.NewError(plugin.KindConfig, "url", "new_probe", errors.New("target URL is required"))
	}
	cfg := buildProbeConfig(opts...)
	if _, err := http.NewRequest(cfg.method, trimmed, nil); err != nil {
		return nil, plugin.NewError(plugin.KindConfig, "url", "new_probe", err)
	}
	return &Probe{target: trimmed, cfg: cfg}, nil
}

func (p *Probe) Name() string { return "url" }

func (p *Probe) Execute(ctx context.Context) (plugin.Sample, error) {
	req, err := http.NewRequestWithContext(ctx, p.cfg.method, p.target, nil)
	if err != nil {
		return plugin.Sample{}, plugin.NewError(plugin.KindConfig, "url", "build_request", err)
	}
	if err := p.cfg.applyMutators(req); err != nil {
		return plugin.Sample{}, plugin.NewError(plugin.KindConfig, "url", "mutate_request", err)
	}

	client := p.cfg.newClient()
	defer client.CloseIdleConnections()

	// The clock starts once the connection is established, so dial and TLS
	// handshake are not part of the sample.
	var start time.Time
	trace := &httptrace.ClientTrace{
		GotConn: func(httptrace.GotConnInfo) { start = time.Now() },
	}
	req = req.WithContext(httptrace.WithClientTrace(req.Context(), trace))

	resp, err := client.Do(req)
	if err != nil {
		return plugin.Sample{}, plugin.NewError(plugin.KindNetwork, "url", "request", err)
	}
	_, err = io.Copy(io.Discard, resp.Body)
	elapsed := time.Since(start)
	resp.Body.Close()
	if err != nil {
		return plugin.Sample{}, plugin.NewError(plugin.KindNetwork, "url", "read_body", err)
	}

	if err := p.cfg.validateResponse(resp); err != nil {
		return plugin.Sample{}, plugin.NewError(plugin.KindQuery, "url", "validate_response", fmt.Errorf("%s: %w", p.target, err))
	}

	return plugin.Sample{
		Backend:  "url",
		Duration: plugin.Millis(elapsed),
	}, nil
}
