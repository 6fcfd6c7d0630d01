// Command autohide-event forwards one tmux hook or binding to the session's
// auto-hide daemon.
//
//	autohide-event attach
//	autohide-event sensor left
//	autohide-event shortcut C-b
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/b/tmux-autohide/pkg/daemon"
	"github.com/b/tmux-autohide/pkg/tmux"
)

var (
	sessionID = flag.String("session", "", "tmux session ID (default: current)")
	windowID  = flag.String("window", "", "tmux window ID (default: active window)")
	timeout   = flag.Duration("timeout", 2*time.Second, "socket timeout")
	quiet     = flag.Bool("q", false, "Do not print the resulting state")
)

var errUsage = errors.New("usage: autohide-event [flags] attach|detach|sensor REGION|content|pointer X Y|resize|shortcut COMBO [WINDOW]|query|subscribe")

// buildMessage turns command-line arguments into a daemon message.
func buildMessage(args []string, window string) (daemon.Message, error) {
	if len(args) == 0 {
		return daemon.Message{}, errUsage
	}
	var (
		msg daemon.Message
		err error
	)
	switch args[0] {
	case "attach":
		msg.Type = daemon.MsgAttach
	case "detach":
		msg.Type = daemon.MsgDetach
	case "content":
		msg.Type = daemon.MsgContentEnter
	case "resize":
		msg.Type = daemon.MsgResize
	case "query":
		msg.Type = daemon.MsgQuery
	case "subscribe":
		msg.Type = daemon.MsgSubscribe
		msg.ClientID = "subscriber-" + uuid.NewString()
	case "sensor":
		if len(args) != 2 {
			return msg, errUsage
		}
		msg, err = daemon.NewMessage(daemon.MsgSensorEnter, daemon.SensorPayload{Region: args[1]})
	case "pointer":
		if len(args) != 3 {
			return msg, errUsage
		}
		x, xErr := strconv.Atoi(args[1])
		y, yErr := strconv.Atoi(args[2])
		if xErr != nil || yErr != nil {
			return msg, fmt.Errorf("pointer: invalid position %q %q", args[1], args[2])
		}
		msg, err = daemon.NewMessage(daemon.MsgPointer, daemon.PointerPayload{X: x, Y: y})
	case "shortcut":
		if len(args) < 2 || len(args) > 3 {
			return msg, errUsage
		}
		p := daemon.ShortcutPayload{Combo: args[1], WindowID: window}
		if len(args) == 3 {
			p.WindowID = args[2]
		}
		msg, err = daemon.NewMessage(daemon.MsgShortcut, p)
	default:
		return msg, errUsage
	}
	msg.Window = window
	return msg, err
}

func printState(w io.Writer, st *daemon.StatePayload) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func run(args []string) error {
	if *sessionID == "" {
		id, err := tmux.CurrentSessionID()
		if err != nil {
			return fmt.Errorf("resolve session: %w", err)
		}
		*sessionID = id
	}
	if *windowID == "" {
		// Hooks run inside the window they concern.
		if id, err := tmux.CurrentWindowID(); err == nil {
			*windowID = id
		}
	}

	msg, err := buildMessage(args, *windowID)
	if err != nil {
		return err
	}

	subscribe := msg.Type == daemon.MsgSubscribe
	connTimeout := *timeout
	if subscribe {
		connTimeout = 0
	}
	c, err := daemon.Dial(*sessionID, connTimeout)
	if err != nil {
		return err
	}
	defer c.Close()

	st, err := c.Request(msg)
	if err != nil {
		return err
	}
	if !*quiet {
		if err := printState(os.Stdout, st); err != nil {
			return err
		}
	}
	if !subscribe {
		return nil
	}
	for {
		reply, err := c.Receive()
		if err != nil {
			return err
		}
		if reply.Type != daemon.MsgState {
			continue
		}
		var pushed daemon.StatePayload
		if err := reply.Decode(&pushed); err != nil {
			return err
		}
		if err := printState(os.Stdout, &pushed); err != nil {
			return err
		}
	}
}

func main() {
	flag.Parse()
	if err := run(flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "autohide-event: %v\n", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
