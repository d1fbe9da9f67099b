package wire

import (
	"bytes"
	"io"
	"strconv"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// chunkReader delivers one chunk per call to Read, the way a stream
// socket may split a frame across several deliveries
type chunkReader struct {
	chunks [][]byte
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, c.chunks[0])
	c.chunks[0] = c.chunks[0][n:]
	if len(c.chunks[0]) == 0 {
		c.chunks = c.chunks[1:]
	}
	return n, nil
}

func split(frame []byte, pieces int) [][]byte {
	size := len(frame) / pieces
	chunks := make([][]byte, 0, pieces)
	for i := 0; i < pieces; i++ {
		end := (i + 1) * size
		if i == pieces-1 {
			end = len(frame)
		}
		chunks = append(chunks, append([]byte(nil), frame[i*size:end]...))
	}
	return chunks
}

func testRequest() Request {
	return Request{
		Reward: 1.5,
		State:  [StateDim]float64{0, -1, 2.25, 3, 1e-9, -7, 8, 1e12},
	}
}

func TestDecode(t *testing.T) {
	Convey("Given a valid request frame", t, func() {
		want := testRequest()
		frame, err := want.MarshalBinary()
		So(err, ShouldBeNil)
		So(len(frame), ShouldEqual, RequestSize)
		So(RequestSize, ShouldEqual, 72)

		for _, pieces := range []int{1, 2, 72} {
			pieces := pieces
			Convey("When it is delivered in "+strconv.Itoa(pieces)+" pieces", func() {
				dec := NewDecoder(&chunkReader{chunks: split(frame, pieces)})
				got, err := dec.Decode()

				So(err, ShouldBeNil)
				So(got, ShouldResemble, want)

				Convey("Then the next read reports the end of the stream", func() {
					_, err := dec.Decode()
					So(IsEndOfStream(err), ShouldBeTrue)
				})
			})
		}

		Convey("When the stream closes part way through a frame", func() {
			dec := NewDecoder(bytes.NewReader(frame[:40]))
			_, err := dec.Decode()

			So(err, ShouldNotBeNil)
			So(IsEndOfStream(err), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "40 of 72")
		})
	})

	Convey("Given an empty stream", t, func() {
		dec := NewDecoder(bytes.NewReader(nil))
		_, err := dec.Decode()
		So(err, ShouldEqual, ErrEndOfStream)
	})

	Convey("Given a stream that fails", t, func() {
		dec := NewDecoder(io.MultiReader(bytes.NewReader(make([]byte, 8)),
			errReader{}))
		_, err := dec.Decode()
		So(err, ShouldNotBeNil)
		So(IsEndOfStream(err), ShouldBeFalse)
	})
}

func TestEncode(t *testing.T) {
	Convey("Given an encoder", t, func() {
		var buf bytes.Buffer
		enc := NewEncoder(&buf)

		Convey("When an action is encoded", func() {
			So(enc.Encode(3), ShouldBeNil)

			Convey("Then exactly one 4-byte frame is written", func() {
				So(buf.Len(), ShouldEqual, ResponseSize)
				So(ByteOrder.Uint32(buf.Bytes()), ShouldEqual, uint32(3))
			})
		})

		Convey("When the action does not fit in an int32", func() {
			So(enc.Encode(1<<40), ShouldNotBeNil)
			So(buf.Len(), ShouldEqual, 0)
		})
	})
}

func TestClient(t *testing.T) {
	Convey("Given a client talking to a canned response stream", t, func() {
		resp, _ := Response(2).MarshalBinary()
		conn := &fakeConn{in: bytes.NewReader(resp)}
		c := NewClient(conn)

		action, err := c.Step(0.5, testRequest().State)

		So(err, ShouldBeNil)
		So(action, ShouldEqual, 2)

		var sent Request
		So(sent.UnmarshalBinary(conn.out.Bytes()), ShouldBeNil)
		So(sent.Reward, ShouldEqual, 0.5)
		So(sent.State, ShouldResemble, testRequest().State)
	})
}

type fakeConn struct {
	in  io.Reader
	out bytes.Buffer
}

func (f *fakeConn) Read(p []byte) (int, error)  { return f.in.Read(p) }
func (f *fakeConn) Write(p []byte) (int, error) { return f.out.Write(p) }

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, io.ErrClosedPipe }
