package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bnema/boardroom/internal/ports"
)

const DefaultProbeTimeout = 10 * time.Second

// ProbeService runs connectivity checks. Failures are reported in the
// result, never as errors.
type ProbeService struct {
	order   []string
	probers map[string]ports.Prober
	logger  *zap.Logger
	timeout time.Duration
}

func NewProbeService(probers []ports.Prober, logger *zap.Logger, timeout time.Duration) *ProbeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}

	service := &ProbeService{
		probers: make(map[string]ports.Prober, len(probers)),
		logger:  logger,
		timeout: timeout,
	}
	for _, prober := range probers {
		name := strings.ToLower(prober.Name())
		if _, ok := service.probers[name]; ok {
			continue
		}
		service.probers[name] = prober
		service.order = append(service.order, name)
	}

	return service
}

func (s *ProbeService) Services() []string {
	return append([]string(nil), s.order...)
}

// Configured reports, per service, whether its credentials are present.
func (s *ProbeService) Configured() map[string]bool {
	configured := make(map[string]bool, len(s.order))
	for _, name := range s.order {
		configured[name] = s.probers[name].Configured()
	}

	return configured
}

func (s *ProbeService) Probe(ctx context.Context, service string) ProbeResult {
	name := strings.ToLower(strings.TrimSpace(service))
	prober, ok := s.probers[name]
	if !ok {
		return ProbeResult{Service: name, Error: fmt.Sprintf("unknown service %q", service)}
	}
	if !prober.Configured() {
		return ProbeResult{Service: name, Error: fmt.Sprintf("%s not configured", name)}
	}

	probeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	message, err := prober.Probe(probeCtx)
	if err != nil {
		s.logger.Warn("probe failed", zap.String("service", name), zap.Error(err))
		return ProbeResult{Service: name, Error: err.Error()}
	}

	return ProbeResult{Service: name, Success: true, Message: message}
}

// Run probes the requested services, or every registered one when cmd names
// none. Results keep the request order.
func (s *ProbeService) Run(ctx context.Context, cmd ProbeCommand) []ProbeResult {
	services := cmd.Services
	if len(services) == 0 {
		services = s.order
	}

	results := make([]ProbeResult, len(services))
	var group errgroup.Group
	for i, service := range services {
		group.Go(func() error {
			results[i] = s.Probe(ctx, service)
			return nil
		})
	}
	_ = group.Wait()

	return results
}

func (s *ProbeService) ProbeAll(ctx context.Context) []ProbeResult {
	return s.Run(ctx, ProbeCommand{})
}
