package rpc

import (
	"fmt"
	"net/rpc"
	"strconv"
	"time"

	"emu65/hw/inspect"
)

type Client struct {
	client *rpc.Client
}

func NewClient(port int) (*Client, error) {
	var (
		client *rpc.Client
		err    error
	)
	const maxretries = 5
	for i := range maxretries {
		if client, err = rpc.DialHTTP("tcp", "localhost:"+strconv.Itoa(port)); err == nil {
			break
		}
		modRPC.WarnZ("dial tcp failed").Error("err", err).Int("retry", i).End()
		time.Sleep(250 * time.Millisecond)
	}

	if err != nil {
		return nil, fmt.Errorf("dial failed max retries: %v", err)
	}

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	modRPC.DebugZ("closing rpc client").End()
	return c.client.Close()
}

func (c *Client) SetPause(pause bool) error { return call(c.client, "emu.SetPause", pause) }
func (c *Client) Stop() error               { return call(c.client, "emu.Stop", nil) }

func (c *Client) Inspect() ([]inspect.Report, error) {
	return request[[]inspect.Report](c.client, "emu.Inspect", nil)
}

// SaveState returns the machine state, as written by the machine SaveState
// method.
func (c *Client) SaveState() ([]byte, error) {
	return request[[]byte](c.client, "emu.SaveState", nil)
}

func call(client *rpc.Client, funcname string, args any) error {
	_, err := request[struct{}](client, funcname, args)
	return err
}

func request[T any](client *rpc.Client, funcname string, args any) (T, error) {
	if args == nil {
		args = &struct{}{}
	}
	var reply T
	if err := client.Call(funcname, args, &reply); err != nil {
		modRPC.ErrorZ("RPC call failed").String("func", funcname).Error("err", err).End()
		return reply, fmt.Errorf("%s: %w", funcname, err)
	}
	return reply, nil
}
