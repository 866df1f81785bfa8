package service

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/coapthing/coapthing-go/pkg/discovery"
	"github.com/coapthing/coapthing-go/pkg/interaction"
	"github.com/coapthing/coapthing-go/pkg/registry"
	"github.com/coapthing/coapthing-go/pkg/transport"
)

// Config configures a Thing server.
type Config struct {
	// Address to listen on. Default ":5683".
	Address string

	// BasePath prefixes every resource path; a trailing separator is
	// stripped. Empty keeps Things at the root.
	BasePath string

	// Host is the authority rendered into description base URIs.
	Host string

	// ServiceName overrides the advertised mDNS instance name; the
	// registry name is used when empty.
	ServiceName string

	// DisableAdvertise turns mDNS advertisement off.
	DisableAdvertise bool

	// Logger for server logging. Nil falls back to the default
	// logger.
	Logger *slog.Logger
}

// Server owns the process lifecycle of one Thing server.
type Server struct {
	config Config
	things registry.Registry

	router     *interaction.Router
	listener   *transport.Listener
	advertiser *discovery.Advertiser
	logger     *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewServer builds a server for a registry. Href prefixes are assigned
// to every Thing here, exactly once: the base path for a single-thing
// registry, {basePath}/{index} per Thing otherwise.
func NewServer(things registry.Registry, config Config) *Server {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	basePath := strings.TrimSuffix(config.BasePath, "/")

	if things.Single() {
		things.Things()[0].SetHrefPrefix(basePath)
	} else {
		for i, t := range things.Things() {
			t.SetHrefPrefix(fmt.Sprintf("%s/%d", basePath, i))
		}
	}

	for _, t := range things.Things() {
		t.SetLogger(config.Logger)
	}

	router := interaction.NewRouter(config.Logger)
	interaction.NewHandlers(things, config.Logger).Register(router, basePath)

	return &Server{
		config: config,
		things: things,
		router: router,
		listener: transport.NewListener(transport.Config{
			Address: config.Address,
			Host:    config.Host,
			Logger:  config.Logger,
		}, router),
		advertiser: discovery.NewAdvertiser(discovery.Config{
			Logger: config.Logger,
		}),
		logger: config.Logger,
	}
}

// Router exposes the routing table, mainly for tests and embedders
// bringing their own transport.
func (s *Server) Router() *interaction.Router {
	return s.router
}

// Start begins listening and starts discovery advertisement. The
// advertisement is fire-and-forget; its failures are retried in the
// background and never surface here.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("server already running")
	}

	if err := s.listener.Listen(); err != nil {
		return err
	}
	s.running = true

	if !s.config.DisableAdvertise {
		name := s.config.ServiceName
		if name == "" {
			name = s.things.Name()
		}
		s.advertiser.Advertise(name, s.listener.Port())
	}

	return nil
}

// Stop withdraws the advertisement and closes the listener, returning
// after both complete. With force the listener is torn down first and
// the advertisement withdrawn afterwards.
func (s *Server) Stop(force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if force {
		err := s.listener.Close()
		s.advertiser.Withdraw()
		return err
	}

	s.advertiser.Withdraw()
	return s.listener.Close()
}
