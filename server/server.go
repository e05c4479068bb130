package server

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/df-mc/blockflow/server/world"
	"github.com/df-mc/blockflow/server/world/eventlog"
	"github.com/df-mc/blockflow/server/world/redstone"
)

// Server holds a single world together with the signal network and the event
// log attached to it.
type Server struct {
	conf   Config
	once   sync.Once
	closed chan struct{}

	world   *world.World
	network *redstone.Network
	events  *eventlog.Handler
}

// World returns the world of the Server.
func (srv *Server) World() *world.World {
	return srv.world
}

// Network returns the signal network used by the world of the Server.
func (srv *Server) Network() *redstone.Network {
	return srv.network
}

// Dropped returns the amount of events the event log dropped. It returns 0 if
// events are not logged.
func (srv *Server) Dropped() uint64 {
	if srv.events == nil {
		return 0
	}
	return srv.events.Dropped()
}

// Closed returns a channel that is closed once the Server is closed.
func (srv *Server) Closed() <-chan struct{} {
	return srv.closed
}

// CloseOnProgramEnd closes the server right before the program ends, so that
// the world is saved when the process is interrupted or terminated.
func (srv *Server) CloseOnProgramEnd() {
	c := make(chan os.Signal, 2)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-c
		if err := srv.Close(); err != nil {
			srv.conf.Log.Error("close server: " + err.Error())
		}
	}()
}

// Close closes the world of the server, saving it to its provider and
// flushing the event log. Calling Close more than once has no effect.
func (srv *Server) Close() error {
	var err error
	srv.once.Do(func() {
		srv.conf.Log.Info("Server closing...")
		err = srv.world.Close()
		srv.conf.Log.Info("Server closed.", "step", srv.world.Step(), "tps", srv.world.TPS())
		close(srv.closed)
	})
	return err
}
