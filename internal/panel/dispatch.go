package panel

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Handler processes one command message from a rendered panel. Handlers
// may do slow work; a failed or panicking handler is logged and never
// crashes the host.
type Handler func(payload json.RawMessage) error

// envelope is the only inbound message shape the dispatcher recognizes.
// Anything whose type is neither "cmd" nor "error" is silently ignored.
type envelope struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
	Message string          `json:"message"`
	Stack   string          `json:"stack"`
}

// Bind attaches a command-handler map to a native panel and returns the
// unsubscribe func. Unknown commands are logged and dropped; handler
// errors and panics are caught at this boundary. The worst outcome of a
// misbehaving or malicious panel is a logged, ignored message.
func Bind(native NativePanel, handlers map[string]Handler, log io.Writer) (unsubscribe func()) {
	if log == nil {
		log = io.Discard
	}
	return native.OnMessage(func(data []byte) {
		dispatch(data, handlers, log)
	})
}

func dispatch(data []byte, handlers map[string]Handler, log io.Writer) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return
	}

	switch env.Type {
	case "error":
		msg := strings.TrimSpace(env.Message)
		if msg == "" {
			msg = "(no message)"
		}
		if strings.TrimSpace(env.Stack) != "" {
			fmt.Fprintf(log, "[glueful] webview error: %s\n%s\n", msg, env.Stack)
		} else {
			fmt.Fprintf(log, "[glueful] webview error: %s\n", msg)
		}
	case "cmd":
		handler, ok := handlers[env.ID]
		if !ok {
			fmt.Fprintf(log, "[glueful] warning: no handler for command %q\n", env.ID)
			return
		}
		invoke(env.ID, handler, env.Payload, log)
	default:
		// Unrecognized envelope shape: drop without logging.
	}
}

func invoke(command string, handler Handler, payload json.RawMessage, log io.Writer) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(log, "[glueful] warning: handler for command %q panicked: %v\n", command, r)
		}
	}()
	if err := handler(payload); err != nil {
		fmt.Fprintf(log, "[glueful] warning: handler for command %q failed: %v\n", command, err)
	}
}
