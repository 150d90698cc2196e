package ipc

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"syscall"
	"time"
)

const dialTimeout = 2 * time.Second

// Client is the CLI side of the daemon's JSON-RPC socket.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path. Failures that
// usually mean the daemon is offline carry a hint for the operator.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, dialTimeout)
	if err != nil {
		return nil, dialError(path, err)
	}
	rc := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rc}, nil
}

func dialError(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("dial %s: %w (daemon not running?)", path, err)
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("dial %s: %w (stale socket; daemon not running?)", path, err)
	default:
		return fmt.Errorf("dial %s: %w", path, err)
	}
}

// Close tears down the RPC client and its socket.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Client) call(method string, req, resp any) error {
	return c.client.Call(ServiceName+"."+method, req, resp)
}

// Ping probes daemon liveness.
func (c *Client) Ping() (*PingResponse, error) {
	var resp PingResponse
	if err := c.call("Ping", PingRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop asks the daemon to begin shutting down its pipeline.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.call("Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status fetches the full daemon snapshot.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.call("Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ScanNow triggers an immediate poll cycle.
func (c *Client) ScanNow() (*ScanNowResponse, error) {
	var resp ScanNowResponse
	if err := c.call("ScanNow", ScanNowRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SpoolList returns spool items optionally filtered by statuses.
func (c *Client) SpoolList(statuses []string) (*SpoolListResponse, error) {
	var resp SpoolListResponse
	if err := c.call("SpoolList", SpoolListRequest{Statuses: statuses}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SpoolClear removes spool items for the given scope.
func (c *Client) SpoolClear(scope string) (*SpoolClearResponse, error) {
	var resp SpoolClearResponse
	if err := c.call("SpoolClear", SpoolClearRequest{Scope: scope}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SpoolRetry retries failed items. An empty id list retries all of them.
func (c *Client) SpoolRetry(ids []int64) (*SpoolRetryResponse, error) {
	var resp SpoolRetryResponse
	if err := c.call("SpoolRetry", SpoolRetryRequest{IDs: ids}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SpoolHealth returns aggregate spool diagnostics.
func (c *Client) SpoolHealth() (*SpoolHealthResponse, error) {
	var resp SpoolHealthResponse
	if err := c.call("SpoolHealth", SpoolHealthRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DatabaseHealth retrieves detailed spool database diagnostics.
func (c *Client) DatabaseHealth() (*DatabaseHealthResponse, error) {
	var resp DatabaseHealthResponse
	if err := c.call("DatabaseHealth", DatabaseHealthRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification asks the daemon to push a test message.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.call("TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
