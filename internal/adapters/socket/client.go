package socket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// Client connects to a running match server.
type Client struct {
	network string
	addr    string
}

// NewClient creates a client for the given network ("tcp" or "unix") and
// address.
func NewClient(network, addr string) *Client {
	return &Client{network: network, addr: addr}
}

// Query sends a single-query request and returns the decoded response.
func (c *Client) Query(id, query string) (*SingleResponse, error) {
	data, err := c.call(Request{ID: id, Query: query})
	if err != nil {
		return nil, err
	}
	var resp SingleResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &resp, nil
}

// QueryBatch sends a multi-query request and returns the decoded response.
func (c *Client) QueryBatch(id string, queries []string) (*BatchResponse, error) {
	data, err := c.call(Request{ID: id, Queries: queries})
	if err != nil {
		return nil, err
	}
	var resp BatchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &resp, nil
}

// Ping checks whether the server is reachable.
func (c *Client) Ping() bool {
	conn, err := net.DialTimeout(c.network, c.addr, 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func (c *Client) call(req Request) ([]byte, error) {
	conn, err := net.DialTimeout(c.network, c.addr, 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(10 * time.Second))

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	if _, err := conn.Write(data); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), maxFrameSize)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		return nil, fmt.Errorf("empty response")
	}
	return scanner.Bytes(), nil
}
