package discovery

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"
)

const (
	// ServiceType is the mDNS service type of a Thing server.
	ServiceType = "_wot._udp"

	// Domain is the mDNS domain.
	Domain = "local."
)

// Config configures advertiser behavior.
type Config struct {
	// Service overrides the advertised service type.
	Service string

	// Interface restricts advertising to one network interface;
	// empty means all interfaces.
	Interface string

	// TTL is the DNS record TTL. Default: 120 seconds.
	TTL time.Duration

	// RetryInterval is the fixed backoff between registration
	// attempts. Default: 5 seconds.
	RetryInterval time.Duration

	// Logger receives retry warnings. Nil falls back to the default
	// logger.
	Logger *slog.Logger
}

// Advertiser registers a Thing server as an mDNS service and keeps
// retrying on a fixed backoff until registration succeeds or the
// advertisement is withdrawn.
type Advertiser struct {
	config Config

	mu     sync.Mutex
	server *zeroconf.Server
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewAdvertiser creates an advertiser. Zero config fields take their
// defaults.
func NewAdvertiser(config Config) *Advertiser {
	if config.Service == "" {
		config.Service = ServiceType
	}
	if config.TTL <= 0 {
		config.TTL = 120 * time.Second
	}
	if config.RetryInterval <= 0 {
		config.RetryInterval = 5 * time.Second
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Advertiser{config: config}
}

// Advertise starts advertising the service in the background and
// returns immediately. A failed registration is retried on the
// configured backoff until Withdraw is called.
func (a *Advertiser) Advertise(name string, port int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		// Already advertising.
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.wg.Add(1)
	go a.run(ctx, name, port)
}

// run is the registration retry loop.
func (a *Advertiser) run(ctx context.Context, name string, port int) {
	defer a.wg.Done()

	for {
		server, err := a.register(name, port)
		if err == nil {
			a.mu.Lock()
			if ctx.Err() != nil {
				// Withdrawn while registering.
				server.Shutdown()
				a.mu.Unlock()
				return
			}
			a.server = server
			a.mu.Unlock()

			a.config.Logger.Info("advertising service",
				"name", name,
				"service", a.config.Service,
				"port", port,
			)
			return
		}

		a.config.Logger.Warn("service registration failed, retrying",
			"name", name,
			"err", err,
			"retryIn", a.config.RetryInterval,
		)

		select {
		case <-ctx.Done():
			return
		case <-time.After(a.config.RetryInterval):
		}
	}
}

// register performs one zeroconf registration attempt.
func (a *Advertiser) register(name string, port int) (*zeroconf.Server, error) {
	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	return zeroconf.Register(
		name,
		a.config.Service,
		Domain,
		port,
		[]string{"path=/"},
		a.interfaces(),
		opts...,
	)
}

// interfaces returns the interfaces to advertise on, nil for all.
func (a *Advertiser) interfaces() []net.Interface {
	if a.config.Interface == "" {
		return nil
	}
	iface, err := net.InterfaceByName(a.config.Interface)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

// Withdraw stops the retry loop and removes the advertisement. It
// returns once the background work has finished.
func (a *Advertiser) Withdraw() {
	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	server := a.server
	a.server = nil
	a.mu.Unlock()

	if server != nil {
		server.Shutdown()
	}
	a.wg.Wait()
}
