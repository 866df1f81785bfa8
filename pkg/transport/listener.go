package transport

import (
	"bytes"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/plgd-dev/go-coap/v3/message"
	"github.com/plgd-dev/go-coap/v3/message/codes"
	"github.com/plgd-dev/go-coap/v3/mux"
	coapnet "github.com/plgd-dev/go-coap/v3/net"
	"github.com/plgd-dev/go-coap/v3/options"
	"github.com/plgd-dev/go-coap/v3/udp"
	udpserver "github.com/plgd-dev/go-coap/v3/udp/server"

	"github.com/coapthing/coapthing-go/pkg/interaction"
	"github.com/coapthing/coapthing-go/pkg/wire"
)

// Scheme is the URI scheme requests arrive over.
const Scheme = "coap"

// Config configures a listener.
type Config struct {
	// Address to listen on (e.g. ":5683").
	Address string

	// Host is the authority rendered into description base URIs.
	// Empty falls back to the bound address.
	Host string

	// Logger for transport logging. Nil falls back to the default
	// logger.
	Logger *slog.Logger
}

// Listener owns the CoAP/UDP socket and feeds every inbound request
// through the interaction router.
type Listener struct {
	config Config
	router *interaction.Router

	mu     sync.Mutex
	conn   *coapnet.UDPConn
	server *udpserver.Server
	wg     sync.WaitGroup
}

// NewListener creates a listener for the given router.
func NewListener(config Config, router *interaction.Router) *Listener {
	if config.Address == "" {
		config.Address = ":5683"
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Listener{config: config, router: router}
}

// Listen binds the UDP socket and starts serving in the background.
func (l *Listener) Listen() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn != nil {
		return fmt.Errorf("already listening")
	}

	conn, err := coapnet.NewListenUDP("udp", l.config.Address)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", l.config.Address, err)
	}

	r := mux.NewRouter()
	r.DefaultHandle(mux.HandlerFunc(l.serve))

	server := udp.NewServer(options.WithMux(r))
	l.conn = conn
	l.server = server

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		if err := server.Serve(conn); err != nil {
			l.config.Logger.Debug("coap server stopped", "err", err)
		}
	}()

	l.config.Logger.Info("listening", "address", conn.LocalAddr().String())
	return nil
}

// Port returns the bound UDP port, zero before Listen.
func (l *Listener) Port() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn == nil {
		return 0
	}
	if addr, ok := l.conn.LocalAddr().(*net.UDPAddr); ok {
		return addr.Port
	}
	return 0
}

// Close stops serving and closes the socket, returning once the serve
// loop has exited.
func (l *Listener) Close() error {
	l.mu.Lock()
	server := l.server
	conn := l.conn
	l.server = nil
	l.conn = nil
	l.mu.Unlock()

	if server != nil {
		server.Stop()
	}
	var err error
	if conn != nil {
		err = conn.Close()
	}
	l.wg.Wait()
	return err
}

// serve translates one CoAP exchange through the router.
func (l *Listener) serve(w mux.ResponseWriter, m *mux.Message) {
	req, ok := l.toRequest(m)
	if !ok {
		l.reply(w, &wire.Response{Status: wire.StatusNotFound})
		return
	}

	l.reply(w, l.router.Dispatch(req))
}

// toRequest converts an inbound CoAP message to a wire request.
func (l *Listener) toRequest(m *mux.Message) (*wire.Request, bool) {
	method, ok := toMethod(m.Code())
	if !ok {
		return nil, false
	}

	path, err := m.Options().Path()
	if err != nil {
		path = "/"
	}
	if path == "" {
		path = "/"
	}

	req := &wire.Request{
		Method: method,
		Path:   path,
		Scheme: Scheme,
		Host:   l.host(),
	}

	if body, err := m.ReadBody(); err == nil && len(body) > 0 {
		req.Body = body
	}
	if cf, err := m.Options().GetUint32(message.ContentFormat); err == nil {
		req.Format = wire.ContentFormat(cf)
	}
	if accept, err := m.Options().GetUint32(message.Accept); err == nil {
		req.Accept = wire.ContentFormat(accept)
	}

	return req, true
}

// reply writes a wire response back onto the exchange.
func (l *Listener) reply(w mux.ResponseWriter, resp *wire.Response) {
	err := w.SetResponse(toCode(resp.Status), toMediaType(resp.Format), bytes.NewReader(resp.Body))
	if err != nil {
		l.config.Logger.Warn("failed to write response", "err", err)
	}
}

// host returns the authority for base URI rendering.
func (l *Listener) host() string {
	if l.config.Host != "" {
		return l.config.Host
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn != nil {
		return l.conn.LocalAddr().String()
	}
	return l.config.Address
}

// toMethod maps CoAP request codes onto wire methods.
func toMethod(code codes.Code) (wire.Method, bool) {
	switch code {
	case codes.GET:
		return wire.MethodGet, true
	case codes.POST:
		return wire.MethodPost, true
	case codes.PUT:
		return wire.MethodPut, true
	case codes.DELETE:
		return wire.MethodDelete, true
	}
	return 0, false
}

// toCode maps the five wire status signals onto CoAP response codes.
func toCode(status wire.Status) codes.Code {
	switch status {
	case wire.StatusContent:
		return codes.Content
	case wire.StatusCreated:
		return codes.Created
	case wire.StatusNoContent:
		return codes.Deleted
	case wire.StatusBadRequest:
		return codes.BadRequest
	case wire.StatusNotFound:
		return codes.NotFound
	}
	return codes.InternalServerError
}

// toMediaType maps a wire content format onto the CoAP media type.
func toMediaType(format wire.ContentFormat) message.MediaType {
	switch format {
	case wire.FormatLinkFormat:
		return message.AppLinkFormat
	case wire.FormatCBOR:
		return message.AppCBOR
	default:
		return message.AppJSON
	}
}
