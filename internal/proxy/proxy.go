// Package proxy wires the wire codec, backend set, journal, membership
// manager, dispatcher and user map into one process-wide state value,
// and runs the accept loop.
//
// Grounded on internal/server/server.go's Server{dbs, serverOpts},
// Start()/listen() accept loop and signal.Notify shutdown wait — the
// same shape, with proxy state (backend set, journal, users, heartbeat)
// standing in for the teacher's set of opened databases.
package proxy

import (
	"net"
	"os"
	"os/signal"
	"syscall"

	"msgproxy/internal/backendset"
	"msgproxy/internal/config"
	"msgproxy/internal/dispatch"
	"msgproxy/internal/journal"
	"msgproxy/internal/log"
	"msgproxy/internal/membership"
	"msgproxy/internal/session"
	"msgproxy/internal/users"
)

// Server is the proxy-state value threaded through every handler
// (spec.md §9, "avoid ambient globals").
type Server struct {
	cfg config.Config

	backends   *backendset.Set
	journal    *journal.Journal
	users      *users.Map
	dispatcher *dispatch.Dispatcher
	membership *membership.Manager
}

func New(cfg config.Config) *Server {
	set := backendset.New()
	j := journal.New()

	return &Server{
		cfg:        cfg,
		backends:   set,
		journal:    j,
		users:      users.New(),
		dispatcher: dispatch.New(set, j),
		membership: membership.New(set, j),
	}
}

// ListenAndServe binds cfg.Addr(), starts the heartbeat manager, and
// accepts connections until a termination signal arrives.
func (s *Server) ListenAndServe() error {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT)

	listener, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return err
	}
	log.Infof("proxy listening on %s", listener.Addr().String())

	go s.membership.Run()
	go s.accept(listener)

	<-sig
	log.Info("shutting down")
	s.membership.Stop()
	return listener.Close()
}

func (s *Server) accept(listener net.Listener) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			log.Errorf("accept: %v", err)
			return
		}
		log.Infof("accepted connection from %s", conn.RemoteAddr().String())

		h := session.NewHandler(conn, s.backends, s.dispatcher, s.users)
		go h.Handle()
	}
}
