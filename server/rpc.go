package server

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/gonzalop/rpcftp/internal/wire"
)

// service publishes a Session over net/rpc. Its exported methods follow the
// net/rpc calling convention; errors cross the wire as "<code> <message>".
//
// net/rpc runs each request in its own goroutine. The mutex restores the
// one-call-at-a-time ordering a Session relies on.
type service struct {
	sess     *Session
	mu       sync.Mutex
	inFlight atomic.Int32
}

func newService(sess *Session) *service {
	return &service{sess: sess}
}

func (svc *service) busy() bool {
	return svc.inFlight.Load() > 0
}

func (svc *service) call(fn func() error) error {
	svc.inFlight.Add(1)
	defer svc.inFlight.Add(-1)

	svc.mu.Lock()
	defer svc.mu.Unlock()

	if err := fn(); err != nil {
		return errors.New(wire.FormatError(err))
	}
	return nil
}

func (svc *service) Get(args *wire.NameArgs, _ *wire.Empty) error {
	return svc.call(func() error { return svc.sess.Get(args.Name) })
}

func (svc *service) Put(args *wire.NameArgs, _ *wire.Empty) error {
	return svc.call(func() error { return svc.sess.Put(args.Name) })
}

func (svc *service) Dir(_ *wire.Empty, reply *wire.DirReply) error {
	return svc.call(func() error {
		names, err := svc.sess.Dir()
		reply.Names = names
		return err
	})
}

func (svc *service) Cd(args *wire.NameArgs, _ *wire.Empty) error {
	return svc.call(func() error { return svc.sess.Cd(args.Name) })
}

func (svc *service) Pwd(_ *wire.Empty, reply *wire.PathReply) error {
	return svc.call(func() error {
		reply.Path = svc.sess.Pwd()
		return nil
	})
}

func (svc *service) Port(args *wire.Endpoint, _ *wire.Empty) error {
	return svc.call(func() error {
		addr, err := args.TCPAddr()
		if err != nil {
			return opError("port", args.String(), ErrInvalidEndpoint, err)
		}
		return svc.sess.Port(addr)
	})
}

func (svc *service) Pasv(_ *wire.Empty, reply *wire.Endpoint) error {
	return svc.call(func() error {
		addr, err := svc.sess.Pasv()
		if err != nil {
			return err
		}
		*reply = wire.NewEndpoint(addr)
		return nil
	})
}
