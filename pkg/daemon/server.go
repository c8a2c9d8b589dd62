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

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/b/wingroup/pkg/logger"
	"github.com/b/wingroup/pkg/paths"
)

// Handler answers one request. It runs on the connection's goroutine.
type Handler func(msg Message) Message

// Server accepts control connections for one tmux session.
type Server struct {
	socketPath string
	pidPath    string
	listener   net.Listener
	handler    Handler
	log        *log.Logger

	clients   map[string]net.Conn // by connection id
	clientsMu sync.RWMutex
	done      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

func NewServer(sessionID string, h Handler) *Server {
	return &Server{
		socketPath: paths.SocketPath(sessionID),
		pidPath:    paths.PidPath(sessionID),
		handler:    h,
		log:        logger.With("component", "daemon"),
		clients:    make(map[string]net.Conn),
		done:       make(chan struct{}),
	}
}

// Start begins listening for client connections
func (s *Server) Start() error {
	if err := s.checkAndClaimPid(); err != nil {
		return err
	}

	// Remove stale socket if exists (safe now that we own the pidfile)
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		os.Remove(s.pidPath)
		return fmt.Errorf("failed to listen on socket: %w", err)
	}
	s.listener = listener

	s.wg.Add(1)
	go s.acceptLoop()
	s.log.Debug("listening", "socket", s.socketPath)
	return nil
}

// checkAndClaimPid checks for a running panel and claims the pidfile
func (s *Server) checkAndClaimPid() error {
	if data, err := os.ReadFile(s.pidPath); err == nil {
		pidStr := strings.TrimSpace(string(data))
		if pid, err := strconv.Atoi(pidStr); err == nil && pid > 0 && pid != os.Getpid() {
			if process, err := os.FindProcess(pid); err == nil {
				// On Unix, FindProcess always succeeds, so we need to send signal 0
				if err := process.Signal(syscall.Signal(0)); err == nil {
					return fmt.Errorf("panel already running with pid %d", pid)
				}
			}
		}
		os.Remove(s.pidPath)
	}

	pid := os.Getpid()
	if err := os.WriteFile(s.pidPath, []byte(strconv.Itoa(pid)), 0644); err != nil {
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
		s.clientsMu.Lock()
		for id, conn := range s.clients {
			conn.Close()
			delete(s.clients, id)
		}
		s.clientsMu.Unlock()
		s.wg.Wait()
		os.Remove(s.socketPath)
		os.Remove(s.pidPath)
	})
}

// ClientCount returns the number of connected clients
func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

func (s *Server) SocketPath() string {
	return s.socketPath
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				s.log.Debug("accept failed", "err", err)
				continue
			}
		}
		s.wg.Add(1)
		go s.handleClient(conn)
	}
}

func (s *Server) handleClient(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	connID := uuid.NewString()
	s.clientsMu.Lock()
	s.clients[connID] = conn
	s.clientsMu.Unlock()
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, connID)
		s.clientsMu.Unlock()
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var msg Message
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			s.sendMessage(conn, Result(fmt.Errorf("bad message: %w", err)))
			continue
		}

		var reply Message
		switch msg.Type {
		case MsgPing:
			reply = Message{Type: MsgPong}
		default:
			if s.handler == nil {
				reply = Result(fmt.Errorf("no handler for %s", msg.Type))
			} else {
				reply = s.handler(msg)
			}
		}
		reply.ClientID = msg.ClientID
		if err := s.sendMessage(conn, reply); err != nil {
			s.log.Debug("reply failed", "client", msg.ClientID, "err", err)
			return
		}
	}
}

// sendMessage sends a message to a client
func (s *Server) sendMessage(conn net.Conn, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(time.Second))
	_, err = conn.Write(append(data, '\n'))
	return err
}
