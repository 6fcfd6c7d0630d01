package daemon

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"
)

// Handler processes one message from a client. A non-nil state is sent
// back as MsgState, an error as MsgError; both nil sends nothing.
type Handler func(clientID string, msg Message) (*StatePayload, error)

// Server accepts hook clients on a unix socket and streams state to
// subscribers.
type Server struct {
	socketPath string
	pidPath    string
	listener   net.Listener
	done       chan struct{}
	stopOnce   sync.Once
	nextID     uint64

	subscribers   map[string]net.Conn
	subscribersMu sync.RWMutex

	sequenceNum uint64
	seqMu       sync.Mutex

	// OnMessage is called for every message other than ping.
	OnMessage Handler
}

// NewServer creates a server for a tmux session.
func NewServer(sessionID string) *Server {
	return NewServerAt(SocketPath(sessionID), PidPath(sessionID))
}

// NewServerAt creates a server on explicit socket and pidfile paths.
func NewServerAt(socketPath, pidPath string) *Server {
	return &Server{
		socketPath:  socketPath,
		pidPath:     pidPath,
		done:        make(chan struct{}),
		subscribers: make(map[string]net.Conn),
		sequenceNum: 1,
	}
}

// Start begins listening for client connections
func (s *Server) Start() error {
	if err := s.checkAndClaimPid(); err != nil {
		return err
	}

	// Safe to remove a stale socket now that we own the pidfile.
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		os.Remove(s.pidPath)
		return fmt.Errorf("failed to listen on socket: %w", err)
	}
	s.listener = listener

	go s.acceptLoop()
	return nil
}

// checkAndClaimPid checks for existing daemon and claims pidfile
func (s *Server) checkAndClaimPid() error {
	if data, err := os.ReadFile(s.pidPath); err == nil {
		pidStr := strings.TrimSpace(string(data))
		if pid, err := strconv.Atoi(pidStr); err == nil && pid > 0 && pid != os.Getpid() {
			if process, err := os.FindProcess(pid); err == nil {
				// On Unix, FindProcess always succeeds, so probe with signal 0
				if err := process.Signal(syscall.Signal(0)); err == nil {
					return fmt.Errorf("daemon already running with pid %d", pid)
				}
			}
		}
		os.Remove(s.pidPath)
	}

	if err := os.WriteFile(s.pidPath, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
		return fmt.Errorf("failed to write pidfile: %w", err)
	}
	return nil
}

// Stop shuts down the server
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.listener != nil {
			s.listener.Close()
		}
		s.subscribersMu.Lock()
		for id, conn := range s.subscribers {
			conn.Close()
			delete(s.subscribers, id)
		}
		s.subscribersMu.Unlock()
		os.Remove(s.socketPath)
		os.Remove(s.pidPath)
	})
}

// SubscriberCount returns the number of clients streaming state.
func (s *Server) SubscriberCount() int {
	s.subscribersMu.RLock()
	defer s.subscribersMu.RUnlock()
	return len(s.subscribers)
}

// GetSocketPath returns the socket path
func (s *Server) GetSocketPath() string {
	return s.socketPath
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				continue
			}
		}
		go s.handleClient(conn)
	}
}

func (s *Server) handleClient(conn net.Conn) {
	defer conn.Close()

	s.seqMu.Lock()
	s.nextID++
	clientID := fmt.Sprintf("conn-%d", s.nextID)
	s.seqMu.Unlock()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 4*1024), 64*1024)

	for scanner.Scan() {
		var msg Message
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			s.sendError(conn, fmt.Errorf("malformed message: %w", err))
			continue
		}
		if msg.ClientID != "" {
			clientID = msg.ClientID
		}

		switch msg.Type {
		case MsgPing:
			s.sendMessage(conn, Message{Type: MsgPong})
			continue
		case MsgSubscribe:
			s.subscribersMu.Lock()
			s.subscribers[clientID] = conn
			s.subscribersMu.Unlock()
		}

		if s.OnMessage == nil {
			continue
		}
		state, err := s.OnMessage(clientID, msg)
		switch {
		case err != nil:
			s.sendError(conn, err)
		case state != nil:
			s.sendState(conn, clientID, state)
		}
	}

	s.subscribersMu.Lock()
	if s.subscribers[clientID] == conn {
		delete(s.subscribers, clientID)
	}
	s.subscribersMu.Unlock()
}

// BroadcastState sends state to every subscriber.
func (s *Server) BroadcastState(state *StatePayload) {
	s.subscribersMu.RLock()
	targets := make(map[string]net.Conn, len(s.subscribers))
	for id, conn := range s.subscribers {
		targets[id] = conn
	}
	s.subscribersMu.RUnlock()

	for id, conn := range targets {
		s.sendState(conn, id, state)
	}
}

func (s *Server) sendState(conn net.Conn, clientID string, state *StatePayload) {
	stamped := *state
	s.seqMu.Lock()
	stamped.SequenceNum = s.sequenceNum
	s.sequenceNum++
	s.seqMu.Unlock()

	msg, err := NewMessage(MsgState, &stamped)
	if err != nil {
		return
	}
	msg.ClientID = clientID
	s.sendMessage(conn, msg)
}

func (s *Server) sendError(conn net.Conn, err error) {
	msg, encErr := NewMessage(MsgError, ErrorPayload{Message: err.Error()})
	if encErr != nil {
		return
	}
	s.sendMessage(conn, msg)
}

func (s *Server) sendMessage(conn net.Conn, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(time.Second))
	_, err = conn.Write(append(data, '\n'))
	return err
}
