package rpc

import (
	"bytes"
	"io"
	"net"
	"net/http"
	"net/rpc"
	"strconv"

	"emu65/hw/inspect"
)

// Emu is the part of the machine controllable remotely.
type Emu interface {
	Pause()
	Resume()
	Stop()
	Inspect() []inspect.Report
	SaveState(w io.Writer) error
}

type emuProxy struct {
	emu Emu
}

func (ep *emuProxy) SetPause(pause bool, _ *struct{}) error {
	if pause {
		ep.emu.Pause()
	} else {
		ep.emu.Resume()
	}
	return nil
}

func (ep *emuProxy) Stop(_ *struct{}, _ *struct{}) error { ep.emu.Stop(); return nil }

func (ep *emuProxy) Inspect(_ *struct{}, reply *[]inspect.Report) error {
	*reply = ep.emu.Inspect()
	return nil
}

func (ep *emuProxy) SaveState(_ *struct{}, reply *[]byte) error {
	var buf bytes.Buffer
	if err := ep.emu.SaveState(&buf); err != nil {
		return err
	}
	*reply = buf.Bytes()
	return nil
}

func (ep *emuProxy) IsReady(_ *struct{}, reply *bool) error {
	*reply = true
	return nil
}

type Server struct {
	io.Closer
}

// NewServer starts serving emu on the given local port.
func NewServer(port int, emu Emu) (*Server, error) {
	srv := rpc.NewServer()
	if err := srv.RegisterName("emu", &emuProxy{emu: emu}); err != nil {
		panic("failed to register RPC server: " + err.Error())
	}
	mux := http.NewServeMux()
	mux.Handle(rpc.DefaultRPCPath, srv)

	l, err := net.Listen("tcp", "localhost:"+strconv.Itoa(port))
	if err != nil {
		return nil, err
	}

	modRPC.InfoZ("rpc server listening").Int("port", port).End()
	go http.Serve(l, mux)
	return &Server{Closer: l}, nil
}
