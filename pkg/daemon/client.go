package daemon

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"
)

// ErrRejected is returned by Request when the daemon answers with MsgError.
var ErrRejected = errors.New("daemon rejected message")

// Client is one connection to a daemon.
type Client struct {
	conn    net.Conn
	scanner *bufio.Scanner
	timeout time.Duration
}

// Dial connects to the daemon of a tmux session.
func Dial(sessionID string, timeout time.Duration) (*Client, error) {
	return DialPath(SocketPath(sessionID), timeout)
}

// DialPath connects to a daemon socket.
func DialPath(path string, timeout time.Duration) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, timeout)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", path, err)
	}
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 4*1024), 64*1024)
	return &Client{conn: conn, scanner: scanner, timeout: timeout}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Send writes one message.
func (c *Client) Send(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if c.timeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	}
	if _, err := c.conn.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("send %s: %w", msg.Type, err)
	}
	return nil
}

// Receive reads the next message. It blocks until one arrives unless the
// client was dialed with a timeout.
func (c *Client) Receive() (Message, error) {
	if c.timeout > 0 {
		c.conn.SetReadDeadline(time.Now().Add(c.timeout))
	}
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return Message{}, err
		}
		return Message{}, fmt.Errorf("daemon closed connection")
	}
	var msg Message
	if err := json.Unmarshal(c.scanner.Bytes(), &msg); err != nil {
		return Message{}, fmt.Errorf("decode reply: %w", err)
	}
	return msg, nil
}

// Request sends msg and waits for the state reply.
func (c *Client) Request(msg Message) (*StatePayload, error) {
	if err := c.Send(msg); err != nil {
		return nil, err
	}
	reply, err := c.Receive()
	if err != nil {
		return nil, err
	}
	switch reply.Type {
	case MsgState:
		var st StatePayload
		if err := reply.Decode(&st); err != nil {
			return nil, err
		}
		return &st, nil
	case MsgError:
		var e ErrorPayload
		if err := reply.Decode(&e); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", ErrRejected, e.Message)
	}
	return nil, fmt.Errorf("unexpected reply %q", reply.Type)
}
