// Package session implements the per-connection handler: reads header
// lines in a loop, classifies the operation, and routes to the
// dispatcher, the membership manager's backend set, or the user map.
//
// Grounded on internal/server/clientHandle.go's Handle() read loop and
// per-command dispatch table, and on original_source/.../ProxyServer.java's
// inner ClientHandler — except this repo implements the looping behavior
// spec.md §4.F/§9 (Open Question 4) specifies instead of the Java
// original's single-shot per-connection handling.
package session

import (
	"bufio"
	"net"

	"github.com/spaolacci/murmur3"

	"msgproxy/internal/backend"
	"msgproxy/internal/backendset"
	"msgproxy/internal/codec"
	"msgproxy/internal/dispatch"
	"msgproxy/internal/errno"
	"msgproxy/internal/log"
	"msgproxy/internal/users"
)

// Handler owns one accepted connection for its lifetime.
type Handler struct {
	conn       net.Conn
	reader     *bufio.Reader
	set        *backendset.Set
	dispatcher *dispatch.Dispatcher
	users      *users.Map
	trace      uint32

	registeredAddr string // the synthesized ADDRESS this session inserted into users, if any
}

func NewHandler(conn net.Conn, set *backendset.Set, dispatcher *dispatch.Dispatcher, um *users.Map) *Handler {
	addr := conn.RemoteAddr().String()
	return &Handler{
		conn:       conn,
		reader:     bufio.NewReader(conn),
		set:        set,
		dispatcher: dispatcher,
		users:      um,
		trace:      murmur3.Sum32([]byte(addr)),
	}
}

// Push implements users.Session: it lets the backend-originated
// SEND_MESSAGE path write straight to this client's socket.
func (h *Handler) Push(line string) error {
	_, err := h.conn.Write([]byte(line))
	return err
}

// Handle runs the session's read loop until the connection closes or a
// protocol error occurs, then cleans up.
func (h *Handler) Handle() {
	defer h.close()

	for {
		header, err := codec.ReadLine(h.reader)
		if err != nil {
			if header == "" {
				return
			}
			// fall through: process the partial final line, then exit next read
		}

		if !h.handleHeader(header) {
			return
		}

		if err != nil {
			return
		}
	}
}

// handleHeader dispatches one parsed header. It returns false when the
// connection should be closed (REGISTER is one-shot; unrecoverable I/O
// errors reading the body also end the session).
func (h *Handler) handleHeader(raw string) bool {
	hdr := codec.ParseHeader(raw)

	switch hdr.Operation {
	case codec.OpRegister:
		h.handleRegister(hdr)
		return false

	case codec.OpClientReq:
		return h.handleClientReq(hdr)

	case codec.OpMessage:
		return h.handleMessage(hdr)

	case codec.OpSendMessage:
		return h.handleSendMessage(hdr)

	default:
		h.reply(errno.TokenUnknownOp + "\n")
		return true
	}
}

func (h *Handler) handleRegister(hdr codec.Header) {
	if _, err := backend.ParsePort(hdr.Port); err != nil {
		log.Errorf("session[%08x]: REGISTER with bad PUERTO %q: %v", h.trace, hdr.Port, err)
		h.reply(errno.TokenUnknownOp + "\n")
		return
	}

	b := backend.New(hdr.IP, hdr.Port)
	h.set.Append(b)
	log.Infof("session[%08x]: registered backend %s", h.trace, b.Addr())
	h.reply("RESPUESTA:ACK\n")
}

func (h *Handler) handleClientReq(hdr codec.Header) bool {
	body, err := codec.ReadLine(h.reader)
	if err != nil && body == "" {
		return false
	}

	request := hdr.Raw
	if hdr.Address == "" {
		// the synthesized address concatenates host and port directly
		// without a separator, reproducing the Java original's
		// InetAddress.toString()+port behavior literally for parity,
		// collisions and all.
		address := syntheticAddress(h.conn)
		if _, inserted := h.users.InsertIfAbsent(address, h); inserted {
			log.Infof("session[%08x]: tracking new client %s", h.trace, address)
		}
		h.registeredAddr = address
		request += ";ADDRESS:" + address
	}
	request += "\n" + body
	response := h.dispatcher.Forward(request)
	h.reply("OPERACION:RESPUESTA\n" + response + "\n")
	return true
}

func (h *Handler) handleMessage(hdr codec.Header) bool {
	body, err := codec.ReadLine(h.reader)
	if err != nil && body == "" {
		return false
	}

	request := hdr.Raw + "\n" + body
	response := h.dispatcher.Forward(request)
	h.reply(response + "\n")
	return true
}

func (h *Handler) handleSendMessage(hdr codec.Header) bool {
	body, err := codec.ReadLine(h.reader)
	if err != nil && body == "" {
		return false
	}

	sess, ok := h.users.Get(hdr.Address)
	if !ok {
		h.reply(errno.TokenResendError + "\n")
		return true
	}

	if pushErr := sess.Push("OPERACION:GET_MESSAGE\n" + body + "\n"); pushErr != nil {
		log.Errorf("session[%08x]: push to %s failed: %v", h.trace, hdr.Address, pushErr)
		h.reply(errno.TokenResendError + "\n")
		return true
	}
	h.reply("ACK\n")
	return true
}

func (h *Handler) reply(line string) {
	if _, err := h.conn.Write([]byte(line)); err != nil {
		log.Errorf("session[%08x]: write failed: %v", h.trace, err)
	}
}

func (h *Handler) close() {
	if h.registeredAddr != "" {
		h.users.Remove(h.registeredAddr)
		disconnect := "OPERACION:DISCONNECT;ADDRESS:" + h.registeredAddr + "\n"
		h.dispatcher.Forward(disconnect)
		log.Infof("session[%08x]: %s disconnected", h.trace, h.registeredAddr)
	}
	h.conn.Close()
}

// syntheticAddress mirrors the Java original's InetAddress.toString()
// concatenated directly with the port (e.g. "/127.0.0.155123"): no
// separator, collisions possible. Specified literally for behavioral
// parity by spec.md §9 Open Question 2; not fixed here.
func syntheticAddress(conn net.Conn) string {
	host, port, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return conn.RemoteAddr().String()
	}
	return "/" + host + port
}
