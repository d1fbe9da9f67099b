package session

// State is a state of the session state machine
type State int32

// Session states. A session moves from WaitConnection to AwaitRequest
// once the fuzzer connects, then cycles through AwaitRequest,
// UpdateAndInfer and SendResponse once per request until it is Closed.
const (
	WaitConnection State = iota
	AwaitRequest
	UpdateAndInfer
	SendResponse
	Closed
)

func (s State) String() string {
	switch s {
	case WaitConnection:
		return "WaitConnection"
	case AwaitRequest:
		return "AwaitRequest"
	case UpdateAndInfer:
		return "UpdateAndInfer"
	case SendResponse:
		return "SendResponse"
	case Closed:
		return "Closed"
	default:
		return "Unknown"
	}
}
