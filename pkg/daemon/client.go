package daemon

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/b/wingroup/pkg/paths"
)

var ErrNotRunning = errors.New("panel is not running")

// Client talks to a running panel.
type Client struct {
	id      string
	conn    net.Conn
	reader  *bufio.Reader
	timeout time.Duration
}

// Dial connects to the panel of a tmux session.
func Dial(sessionID string) (*Client, error) {
	return DialPath(paths.SocketPath(sessionID))
}

func DialPath(socket string) (*Client, error) {
	conn, err := net.DialTimeout("unix", socket, time.Second)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotRunning, err)
	}
	return &Client{
		id:      uuid.NewString(),
		conn:    conn,
		reader:  bufio.NewReader(conn),
		timeout: 3 * time.Second,
	}, nil
}

func (c *Client) ID() string { return c.id }

func (c *Client) Close() error {
	return c.conn.Close()
}

// Request sends msg and waits for the reply.
func (c *Client) Request(msg Message) (Message, error) {
	msg.ClientID = c.id
	data, err := json.Marshal(msg)
	if err != nil {
		return Message{}, err
	}
	c.conn.SetDeadline(time.Now().Add(c.timeout))
	if _, err := c.conn.Write(append(data, '\n')); err != nil {
		return Message{}, fmt.Errorf("send %s: %w", msg.Type, err)
	}
	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		return Message{}, fmt.Errorf("read reply to %s: %w", msg.Type, err)
	}
	var reply Message
	if err := json.Unmarshal(line, &reply); err != nil {
		return Message{}, fmt.Errorf("bad reply to %s: %w", msg.Type, err)
	}
	return reply, nil
}

// Call sends a request with payload and turns a failed result into an
// error.
func (c *Client) Call(t MessageType, payload interface{}) (Message, error) {
	msg, err := NewMessage(t, payload)
	if err != nil {
		return Message{}, err
	}
	reply, err := c.Request(msg)
	if err != nil {
		return Message{}, err
	}
	if reply.Type == MsgResult {
		var res ResultPayload
		if err := reply.Decode(&res); err != nil {
			return reply, err
		}
		if !res.OK {
			return reply, errors.New(res.Error)
		}
	}
	return reply, nil
}

func (c *Client) Ping() error {
	reply, err := c.Request(Message{Type: MsgPing})
	if err != nil {
		return err
	}
	if reply.Type != MsgPong {
		return fmt.Errorf("unexpected reply %s", reply.Type)
	}
	return nil
}
