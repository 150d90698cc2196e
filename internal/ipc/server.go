package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ArcCdr/AutomatedFanfic/internal/api"
	"github.com/ArcCdr/AutomatedFanfic/internal/config"
	"github.com/ArcCdr/AutomatedFanfic/internal/daemon"
	"github.com/ArcCdr/AutomatedFanfic/internal/logging"
	"github.com/ArcCdr/AutomatedFanfic/internal/queue"
)

// ServiceName is the RPC namespace the daemon registers.
const ServiceName = "AutoFanfic"

// SocketFileName is the control socket created under the log directory.
const SocketFileName = "autofanfic.sock"

// DefaultSocketPath returns the control socket location for a config.
func DefaultSocketPath(cfg *config.Config) string {
	if cfg == nil {
		return filepath.Join(os.TempDir(), SocketFileName)
	}
	return filepath.Join(cfg.Paths.LogDir, SocketFileName)
}

// Server answers CLI control requests on a Unix domain socket using JSON-RPC.
type Server struct {
	path      string
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer claims the socket at path and registers the control service.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server needs a daemon")
	}
	log := logging.NewComponentLogger(logger, "ipc")

	listener, err := claimSocket(path)
	if err != nil {
		return nil, err
	}

	rpcServer := rpc.NewServer()
	if err := rpcServer.RegisterName(ServiceName, &service{daemon: d, logger: log, ctx: ctx}); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register control service: %w", err)
	}

	srvCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		logger:    log,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       srvCtx,
		cancel:    cancel,
	}, nil
}

// claimSocket removes any leftover socket file and listens fresh. The daemon
// lock already guarantees single ownership, so an existing file is stale.
func claimSocket(path string) (net.Listener, error) {
	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("unlink stale socket: %w", err)
	}
	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on control socket: %w", err)
	}
	return listener, nil
}

// Serve begins accepting control connections in the background.
func (s *Server) Serve() {
	s.logger.Debug("control socket listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go s.acceptLoop()
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.ctx.Err() != nil {
				return
			}
			s.logger.Warn("socket accept failed",
				logging.Error(err),
				logging.String(logging.FieldEventType, "control_accept_failed"),
				logging.String(logging.FieldImpact, "IPC clients may fail to connect"),
				logging.String(logging.FieldErrorHint, "check socket permissions and restart the daemon if needed"))
			continue
		}
		s.wg.Add(1)
		go s.serveConn(conn)
	}
}

func (s *Server) serveConn(conn net.Conn) {
	defer s.wg.Done()
	s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(conn))
}

// Close shuts the listener down, waits for in-flight calls, and unlinks the
// socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()

	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("socket unlink failed",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "control_socket_unlink_failed"),
			logging.String(logging.FieldImpact, "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "remove the socket file manually or rerun autofanfic stop"))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) Ping(_ PingRequest, resp *PingResponse) error {
	*resp = PingResponse{Pong: true, PID: os.Getpid()}
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.logger.Debug("daemon stop requested")
	s.daemon.Stop()
	resp.Stopped = true
	s.logger.Info("shutdown requested over control socket",
		logging.String(logging.FieldEventType, "daemon_shutdown"))
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	snapshot := s.daemon.Status(s.ctx)

	*resp = StatusResponse{
		Running:       snapshot.Running,
		PID:           snapshot.PID,
		WatchDir:      snapshot.WatchDir,
		SpoolDBPath:   snapshot.SpoolDBPath,
		LockPath:      snapshot.LockFilePath,
		MonitorAlive:  snapshot.MonitorAlive,
		CycleCount:    snapshot.Watcher.CycleCount,
		LastBatchSize: snapshot.Watcher.LastBatchSize,
		Queues:        snapshot.Manager.Queues,
		Spooled:       snapshot.Manager.Spooled,
		Dropped:       snapshot.Manager.Dropped,
		SpoolBySite:   snapshot.SpoolBySite,
		SpoolStats:    make(map[string]int, len(snapshot.SpoolStats)),
	}
	if !snapshot.Watcher.LastCycleAt.IsZero() {
		resp.LastCycleAt = snapshot.Watcher.LastCycleAt.UTC().Format(time.RFC3339)
	}
	for status, count := range snapshot.SpoolStats {
		resp.SpoolStats[string(status)] = count
	}
	return nil
}

func (s *service) ScanNow(_ ScanNowRequest, resp *ScanNowResponse) error {
	s.logger.Debug("manual scan requested via IPC")
	if err := s.daemon.ScanNow(); err != nil {
		*resp = ScanNowResponse{Triggered: false, Message: err.Error()}
		return nil
	}
	*resp = ScanNowResponse{Triggered: true, Message: "scan triggered"}
	return nil
}

func (s *service) SpoolList(req SpoolListRequest, resp *SpoolListResponse) error {
	statuses, err := parseStatuses(req.Statuses)
	if err != nil {
		return err
	}
	items, err := s.daemon.SpoolList(s.ctx, statuses)
	if err != nil {
		return err
	}
	resp.Items = api.FromSpoolItems(items)
	return nil
}

func parseStatuses(raw []string) ([]queue.Status, error) {
	statuses := make([]queue.Status, 0, len(raw))
	for _, value := range raw {
		status, ok := queue.ParseStatus(value)
		if !ok {
			return nil, fmt.Errorf("unknown spool status %q", value)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func (s *service) SpoolClear(req SpoolClearRequest, resp *SpoolClearResponse) error {
	s.logger.Debug("spool clear requested", logging.String("scope", req.Scope))

	var removed int64
	var err error
	switch req.Scope {
	case ClearScopeAll:
		removed, err = s.daemon.SpoolClear(s.ctx)
	case ClearScopeCompleted:
		removed, err = s.daemon.SpoolClearCompleted(s.ctx)
	case ClearScopeFailed:
		removed, err = s.daemon.SpoolClearFailed(s.ctx)
	default:
		return fmt.Errorf("unknown clear scope %q", req.Scope)
	}
	if err != nil {
		return err
	}

	resp.Removed = removed
	s.logger.Info("spool cleared",
		logging.String(logging.FieldEventType, "spool_clear"),
		logging.String("scope", req.Scope),
		logging.Int64("removed", removed))
	return nil
}

func (s *service) SpoolRetry(req SpoolRetryRequest, resp *SpoolRetryResponse) error {
	s.logger.Debug("spool retry requested", logging.Int("item_count", len(req.IDs)))
	updated, err := s.daemon.SpoolRetry(s.ctx, req.IDs)
	if err != nil {
		return err
	}
	resp.Updated = updated
	s.logger.Info("spool items retried",
		logging.String(logging.FieldEventType, "spool_retry"),
		logging.Int64("updated", updated))
	return nil
}

func (s *service) SpoolHealth(_ SpoolHealthRequest, resp *SpoolHealthResponse) error {
	health, err := s.daemon.SpoolHealth(s.ctx)
	if err != nil {
		return err
	}
	*resp = SpoolHealthResponse{
		Total:     health.Total,
		Pending:   health.Pending,
		Completed: health.Completed,
		Failed:    health.Failed,
	}
	return nil
}

func (s *service) DatabaseHealth(_ DatabaseHealthRequest, resp *DatabaseHealthResponse) error {
	health, err := s.daemon.DatabaseHealth(s.ctx)
	if err != nil && health.Error == "" {
		return err
	}
	*resp = DatabaseHealthResponse{
		DBPath:           health.DBPath,
		DatabaseExists:   health.DatabaseExists,
		DatabaseReadable: health.DatabaseReadable,
		TableExists:      health.TableExists,
		ColumnsPresent:   health.ColumnsPresent,
		MissingColumns:   health.MissingColumns,
		IntegrityCheck:   health.IntegrityCheck,
		TotalItems:       health.TotalItems,
		Error:            health.Error,
	}
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	sent, message, err := s.daemon.TestNotification(s.ctx)
	resp.Sent = sent
	resp.Message = message
	return err
}
