package wire

import (
	"io"

	"github.com/pkg/errors"
)

// Client implements the fuzzer side of the protocol. The advisor never
// uses it; it exists for scripted peers and tests.
type Client struct {
	rw  io.ReadWriter
	buf [ResponseSize]byte
}

// NewClient returns a Client speaking over rw
func NewClient(rw io.ReadWriter) *Client {
	return &Client{rw: rw}
}

// Send writes a request frame
func (c *Client) Send(req Request) error {
	buf, _ := req.MarshalBinary()
	if _, err := c.rw.Write(buf); err != nil {
		return errors.Wrap(err, "send")
	}
	return nil
}

// Receive blocks until a response frame is read and returns its action
func (c *Client) Receive() (int, error) {
	if _, err := io.ReadFull(c.rw, c.buf[:]); err != nil {
		return 0, errors.Wrap(err, "receive")
	}
	var resp Response
	if err := resp.UnmarshalBinary(c.buf[:]); err != nil {
		return 0, err
	}
	return int(resp), nil
}

// Step sends a request and waits for the matching response
func (c *Client) Step(reward float64, state [StateDim]float64) (int, error) {
	if err := c.Send(Request{Reward: reward, State: state}); err != nil {
		return 0, err
	}
	return c.Receive()
}
