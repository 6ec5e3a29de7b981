package daemon

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/foundryhq/workbay/internal/logger"
)

// RequestKind names one message in the IPC request set (spec §4.I).
type RequestKind string

const (
	ReqPing             RequestKind = "Ping"
	ReqStatus           RequestKind = "Status"
	ReqAddRepository    RequestKind = "AddRepository"
	ReqRemoveRepository RequestKind = "RemoveRepository"
	ReqListRepositories RequestKind = "ListRepositories"
	ReqGetChanges       RequestKind = "GetChanges"
	ReqGetEvents        RequestKind = "GetEvents"
	ReqShutdown         RequestKind = "Shutdown"
)

// Request is the versioned, self-describing envelope every IPC message
// is framed as. Only the fields relevant to Kind are populated.
type Request struct {
	Version int         `json:"version"`
	Kind    RequestKind `json:"kind"`
	Path    string      `json:"path,omitempty"`  // AddRepository
	Name    string      `json:"name,omitempty"`  // AddRepository, RemoveRepository, GetChanges
	Since   *time.Time  `json:"since,omitempty"` // GetEvents
	Limit   int         `json:"limit,omitempty"` // GetEvents
}

// ResponseKind names one message in the IPC response set.
type ResponseKind string

const (
	RespOk           ResponseKind = "Ok"
	RespString       ResponseKind = "String"
	RespStatus       ResponseKind = "Status"
	RespRepositories ResponseKind = "Repositories"
	RespEvents       ResponseKind = "Events"
	RespError        ResponseKind = "Error"
)

// Repository is one workspace the daemon is tracking.
type Repository struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// DaemonStatus reports the daemon's current state.
type DaemonStatus struct {
	Running       bool   `json:"running"`
	PID           int    `json:"pid"`
	SocketPath    string `json:"socket_path"`
	Repositories  int    `json:"repositories"`
	Subscribers   int    `json:"subscribers"`
	EventsEmitted uint64 `json:"events_emitted"`
}

// Response is the versioned envelope every reply is framed as.
type Response struct {
	Version      int           `json:"version"`
	Kind         ResponseKind  `json:"kind"`
	String       string        `json:"string,omitempty"`
	Status       *DaemonStatus `json:"status,omitempty"`
	Repositories []Repository  `json:"repositories,omitempty"`
	Events       []Event       `json:"events,omitempty"`
	Error        string        `json:"error,omitempty"`
}

const protocolVersion = 1

// EncodeFrame writes v (a Request or Response) to w as a u32-LE length
// prefix followed by its JSON encoding.
func EncodeFrame(w io.Writer, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var prefix [4]byte
	binary.LittleEndian.PutUint32(prefix[:], uint32(len(payload)))
	if _, err := w.Write(prefix[:]); err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

// maxFrameSize bounds a single frame's payload, guarding the server
// against a malformed or hostile length prefix.
const maxFrameSize = 16 * 1024 * 1024

// DecodeFrame reads one length-prefixed frame from r and unmarshals its
// payload into v.
func DecodeFrame(r io.Reader, v interface{}) error {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return err
	}
	n := binary.LittleEndian.Uint32(prefix[:])
	if n > maxFrameSize {
		return fmt.Errorf("frame of %d bytes exceeds maximum %d", n, maxFrameSize)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return err
	}
	return json.Unmarshal(payload, v)
}

// Registry is the subset of workspace-membership state the IPC server
// exposes and mutates. Implementations must be safe for concurrent use.
type Registry interface {
	Add(name, path string) error
	Remove(name string) error
	List() []Repository
	Changes(name string) ([]string, error)
}

// Server is the Unix-domain-socket IPC server (spec §4.I): it binds a
// socket, accepts connections, and serves each on its own goroutine
// until Shutdown is requested.
type Server struct {
	SocketPath string
	Registry   Registry
	Bus        *Bus
	Started    time.Time

	listener net.Listener
	wg       sync.WaitGroup

	mu       sync.Mutex
	shutdown bool
}

// NewServer builds a Server bound to socketPath, backed by reg for
// repository state. The bus keeps no event history, so GetEvents does not
// read from it.
func NewServer(socketPath string, reg Registry, bus *Bus) *Server {
	return &Server{SocketPath: socketPath, Registry: reg, Bus: bus}
}

// ListenAndServe removes any stale socket file, binds the socket, and
// accepts connections until Shutdown is called or stop is closed.
func (s *Server) ListenAndServe(stop <-chan struct{}) error {
	if err := os.Remove(s.SocketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale socket %s: %w", s.SocketPath, err)
	}

	ln, err := net.Listen("unix", s.SocketPath)
	if err != nil {
		return fmt.Errorf("failed to bind socket %s: %w", s.SocketPath, err)
	}
	s.listener = ln
	s.Started = time.Now()

	go func() {
		<-stop
		s.Shutdown(5 * time.Second)
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			down := s.shutdown
			s.mu.Unlock()
			if down {
				s.wg.Wait()
				return nil
			}
			return err
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(conn)
		}()
	}
}

// Shutdown stops accepting new connections, waits up to deadline for
// in-flight handlers to finish, then removes the socket file.
func (s *Server) Shutdown(deadline time.Duration) {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return
	}
	s.shutdown = true
	s.mu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}

	drained := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(deadline):
		logger.Get().Warn("IPC server shutdown deadline exceeded with handlers still draining")
	}

	_ = os.Remove(s.SocketPath)
}

func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()
	for {
		var req Request
		if err := DecodeFrame(conn, &req); err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Get().Debug("IPC connection read error: %v", err)
			}
			return
		}

		resp := s.handle(req)
		if err := EncodeFrame(conn, resp); err != nil {
			logger.Get().Debug("IPC connection write error: %v", err)
			return
		}

		if req.Kind == ReqShutdown {
			go s.Shutdown(5 * time.Second)
			return
		}
	}
}

func (s *Server) handle(req Request) Response {
	base := Response{Version: protocolVersion}

	switch req.Kind {
	case ReqPing:
		base.Kind = RespOk
		return base

	case ReqStatus:
		status := &DaemonStatus{
			Running:    true,
			PID:        os.Getpid(),
			SocketPath: s.SocketPath,
		}
		if s.Registry != nil {
			status.Repositories = len(s.Registry.List())
		}
		if s.Bus != nil {
			status.Subscribers = s.Bus.SubscriberCount()
			status.EventsEmitted = s.Bus.Emitted()
		}
		base.Kind = RespStatus
		base.Status = status
		return base

	case ReqAddRepository:
		if s.Registry == nil {
			return errorResponse("no registry configured")
		}
		name := req.Name
		if name == "" {
			name = req.Path
		}
		if err := s.Registry.Add(name, req.Path); err != nil {
			return errorResponse(err.Error())
		}
		base.Kind = RespOk
		return base

	case ReqRemoveRepository:
		if s.Registry == nil {
			return errorResponse("no registry configured")
		}
		if err := s.Registry.Remove(req.Name); err != nil {
			return errorResponse(err.Error())
		}
		base.Kind = RespOk
		return base

	case ReqListRepositories:
		if s.Registry == nil {
			return errorResponse("no registry configured")
		}
		base.Kind = RespRepositories
		base.Repositories = s.Registry.List()
		return base

	case ReqGetChanges:
		if s.Registry == nil {
			return errorResponse("no registry configured")
		}
		changes, err := s.Registry.Changes(req.Name)
		if err != nil {
			return errorResponse(err.Error())
		}
		base.Kind = RespString
		base.String = fmt.Sprintf("%d change(s)", len(changes))
		return base

	case ReqGetEvents:
		base.Kind = RespEvents
		base.Events = []Event{} // the bus is a live fan-out with no history; GetEvents always answers with an empty list and ignores since/limit
		return base

	case ReqShutdown:
		base.Kind = RespOk
		return base

	default:
		return errorResponse(fmt.Sprintf("unknown request kind %q", req.Kind))
	}
}

func errorResponse(msg string) Response {
	return Response{Version: protocolVersion, Kind: RespError, Error: msg}
}
