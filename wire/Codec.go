// Package wire implements the fixed-size binary frames exchanged between
// the fuzzer and the advisor.
//
// A request is StateDim+1 float64 values in host byte order: the reward
// earned by the previously returned action followed by the new state.
// A response is a single int32 in host byte order: the chosen action.
// There is no length prefix and no framing beyond the fixed sizes, so
// exactly one request is read before each response is written.
package wire

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
	"golang.org/x/sys/cpu"
)

const (
	// StateDim is the number of features in each state vector
	StateDim = 8

	// NumActions is the number of discrete actions the advisor chooses
	// between
	NumActions = 4

	// RequestSize is the size in bytes of one request frame
	RequestSize = (StateDim + 1) * 8

	// ResponseSize is the size in bytes of one response frame
	ResponseSize = 4
)

// ByteOrder is the host byte order, which both peers use on the wire
var ByteOrder binary.ByteOrder = hostByteOrder()

func hostByteOrder() binary.ByteOrder {
	if cpu.IsBigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Request is a single decoded request frame
type Request struct {
	Reward float64
	State  [StateDim]float64
}

// MarshalBinary implements the encoding.BinaryMarshaler interface
func (r Request) MarshalBinary() ([]byte, error) {
	buf := make([]byte, RequestSize)
	ByteOrder.PutUint64(buf, math.Float64bits(r.Reward))
	for i, v := range r.State {
		ByteOrder.PutUint64(buf[8*(i+1):], math.Float64bits(v))
	}
	return buf, nil
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface.
// The data must be exactly RequestSize bytes.
func (r *Request) UnmarshalBinary(data []byte) error {
	if len(data) != RequestSize {
		return errors.Errorf("unmarshalBinary: invalid request size "+
			"\n\twant(%d)\n\thave(%d)", RequestSize, len(data))
	}
	r.Reward = math.Float64frombits(ByteOrder.Uint64(data))
	for i := range r.State {
		r.State[i] = math.Float64frombits(ByteOrder.Uint64(data[8*(i+1):]))
	}
	return nil
}

// Response is a single response frame holding the chosen action
type Response int32

// MarshalBinary implements the encoding.BinaryMarshaler interface
func (r Response) MarshalBinary() ([]byte, error) {
	buf := make([]byte, ResponseSize)
	ByteOrder.PutUint32(buf, uint32(r))
	return buf, nil
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface
func (r *Response) UnmarshalBinary(data []byte) error {
	if len(data) != ResponseSize {
		return errors.Errorf("unmarshalBinary: invalid response size "+
			"\n\twant(%d)\n\thave(%d)", ResponseSize, len(data))
	}
	*r = Response(int32(ByteOrder.Uint32(data)))
	return nil
}

// Decoder reads request frames from a stream. It holds at most one
// in-flight frame.
type Decoder struct {
	r   io.Reader
	buf [RequestSize]byte
}

// NewDecoder returns a Decoder reading from r
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Decode blocks until one full request frame has been read, however
// many reads the bytes arrive in.
//
// If the stream ends before a frame is complete, either exactly at a
// frame boundary or part way through one, the returned error satisfies
// IsEndOfStream.
func (d *Decoder) Decode() (Request, error) {
	n, err := io.ReadFull(d.r, d.buf[:])
	switch {
	case err == io.EOF:
		return Request{}, ErrEndOfStream
	case err == io.ErrUnexpectedEOF:
		return Request{}, errors.Wrapf(ErrEndOfStream,
			"decode: stream closed after %d of %d bytes", n, RequestSize)
	case err != nil:
		return Request{}, errors.Wrap(err, "decode")
	}

	var req Request
	if err := req.UnmarshalBinary(d.buf[:]); err != nil {
		return Request{}, err
	}
	return req, nil
}

// Encoder writes response frames to a stream
type Encoder struct {
	w io.Writer
}

// NewEncoder returns an Encoder writing to w
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes a single response frame holding action
func (e *Encoder) Encode(action int) error {
	if action < math.MinInt32 || action > math.MaxInt32 {
		return errors.Errorf("encode: action %d does not fit in int32", action)
	}
	buf, _ := Response(action).MarshalBinary()
	if _, err := e.w.Write(buf); err != nil {
		return errors.Wrap(err, "encode")
	}
	return nil
}
