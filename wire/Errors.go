package wire

import "github.com/pkg/errors"

// ErrEndOfStream is returned when the peer closes the stream. It marks
// the orderly end of a session rather than a failure.
var ErrEndOfStream = errors.New("end of stream")

// IsEndOfStream returns whether or not an error reports that the peer
// closed the stream, possibly in the middle of a frame.
func IsEndOfStream(err error) bool {
	return errors.Is(err, ErrEndOfStream)
}
