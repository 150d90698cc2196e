package daemonctl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ArcCdr/AutomatedFanfic/internal/api"
	"github.com/ArcCdr/AutomatedFanfic/internal/config"
	"github.com/ArcCdr/AutomatedFanfic/internal/daemon"
	"github.com/ArcCdr/AutomatedFanfic/internal/daemonrun"
	"github.com/ArcCdr/AutomatedFanfic/internal/ipc"
	"github.com/ArcCdr/AutomatedFanfic/internal/preflight"
	"github.com/ArcCdr/AutomatedFanfic/internal/queue"
	"github.com/ArcCdr/AutomatedFanfic/internal/sites"
)

// probeEvery is how often start and stop waits re-check the socket.
const probeEvery = 200 * time.Millisecond

// ErrDaemonNotRunning is returned by stop-side operations when nothing is
// listening on the control socket.
var ErrDaemonNotRunning = errors.New("the daemon is not running")

// LaunchOptions carries the CLI flags forwarded to a spawned daemon process.
type LaunchOptions struct {
	SocketPath string
	ConfigPath string
	Diagnostic bool
}

type StartState string

const (
	StartStateStarted        StartState = "started"
	StartStateAlreadyRunning StartState = "already_running"
	StartStateDegraded       StartState = "degraded"
)

// StartResult describes how EnsureStarted left the daemon.
type StartResult struct {
	State    StartState
	Launched bool
	Message  string
}

// StopResult describes how StopAndTerminate brought the daemon down.
type StopResult struct {
	StopAcknowledged bool
	ForcedKill       bool
	PID              int
}

// RestartResult bundles the stop and start halves of a restart.
type RestartResult struct {
	WasRunning bool
	Stop       StopResult
	Start      StartResult
}

// Launch spawns a detached daemon process running the hidden `daemon`
// subcommand of executablePath, forwarding the socket, config, and
// diagnostic flags when set.
func Launch(executablePath string, opts LaunchOptions) error {
	if strings.TrimSpace(executablePath) == "" {
		return errors.New("launch daemon: executable path is empty")
	}

	args := []string{"daemon"}
	if socket := strings.TrimSpace(opts.SocketPath); socket != "" {
		args = append(args, "--socket", socket)
	}
	if cfgPath := strings.TrimSpace(opts.ConfigPath); cfgPath != "" {
		args = append(args, "--config", cfgPath)
	}
	if opts.Diagnostic {
		args = append(args, "--diagnostic")
	}

	cmd := exec.Command(executablePath, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("spawn daemon process: %w", err)
	}
	// Release so the daemon outlives this CLI invocation.
	return cmd.Process.Release()
}

// WaitForClient repeatedly dials the control socket until the daemon answers
// or timeout elapses, returning a connected client on success.
func WaitForClient(socketPath string, timeout time.Duration) (*ipc.Client, error) {
	deadline := time.Now().Add(timeout)
	for {
		client, err := ipc.Dial(socketPath)
		if err == nil {
			return client, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("daemon did not become reachable: %w", err)
		}
		time.Sleep(probeEvery)
	}
}

// EnsureStarted makes sure a daemon is up, launching one when the socket is
// unreachable. A daemon that answers but reports a stopped watcher pipeline
// is degraded; the pipeline lives and dies with the process, so there is no
// way to revive it over IPC.
func EnsureStarted(socketPath, executablePath string, opts LaunchOptions, waitTimeout time.Duration) (StartResult, error) {
	launched := false
	client, err := ipc.Dial(socketPath)
	if err != nil {
		if err := Launch(executablePath, opts); err != nil {
			return StartResult{}, err
		}
		launched = true
		if client, err = WaitForClient(socketPath, waitTimeout); err != nil {
			return StartResult{}, err
		}
	}
	defer client.Close()

	status, err := client.Status()
	if err != nil || status == nil || !status.Running {
		return StartResult{
			State:    StartStateDegraded,
			Launched: launched,
			Message:  "daemon is reachable but the watcher pipeline is not running; check the logs",
		}, nil
	}

	state := StartStateAlreadyRunning
	if launched {
		state = StartStateStarted
	}
	return StartResult{State: state, Launched: launched}, nil
}

// WaitForShutdown blocks until the daemon is gone: either the socket stops
// answering or the daemon reports its pipeline stopped.
func WaitForShutdown(socketPath string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		down, err := daemonDown(socketPath)
		if down {
			return nil
		}
		if time.Now().After(deadline) {
			if err == nil {
				err = errors.New("still answering on the control socket")
			}
			return fmt.Errorf("daemon did not shut down: %w", err)
		}
		time.Sleep(probeEvery)
	}
}

// daemonDown probes the socket once. A missing socket and a daemon whose
// pipeline has stopped both count as down.
func daemonDown(socketPath string) (bool, error) {
	client, err := ipc.Dial(socketPath)
	if err != nil {
		if isDaemonUnavailable(err) {
			return true, nil
		}
		return false, err
	}
	defer client.Close()

	status, err := client.Status()
	if err != nil {
		return false, err
	}
	return !status.Running, nil
}

// ProcessInfo reports whether the control socket answers and, when it does,
// the daemon's PID from a ping.
func ProcessInfo(socketPath string) (bool, int, error) {
	client, err := ipc.Dial(socketPath)
	if err != nil {
		if isDaemonUnavailable(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	defer client.Close()

	pong, err := client.Ping()
	if err != nil {
		return true, 0, err
	}
	return true, pong.PID, nil
}

// DeriveLogDir resolves the daemon runtime directory, where the lock, pid,
// socket, and log files live. A reported lock path wins over config.
func DeriveLogDir(lockPath string, cfg *config.Config) string {
	if strings.TrimSpace(lockPath) != "" {
		return filepath.Dir(lockPath)
	}
	if cfg != nil && strings.TrimSpace(cfg.Paths.LogDir) != "" {
		return cfg.Paths.LogDir
	}
	return ""
}

// readPIDFile parses a pid file. Missing files and garbage content both
// yield zero so the caller can fall back to another source.
func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read pid file %s: %w", path, err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, nil
	}
	return pid, nil
}

// ForceKillProcess sends SIGKILL to the daemon identified by the pid file,
// or fallbackPID when the file is unusable, then removes the pid and lock
// files. It refuses to kill the calling process.
func ForceKillProcess(pidPath, lockPath string, fallbackPID int) (int, error) {
	pid, err := readPIDFile(pidPath)
	if err != nil {
		return 0, err
	}
	if pid == 0 {
		pid = fallbackPID
	}
	if pid <= 0 {
		return 0, fmt.Errorf("no usable daemon pid (pid file %s)", pidPath)
	}
	if pid == os.Getpid() {
		return 0, fmt.Errorf("pid %d is this process; refusing to kill it", pid)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return 0, fmt.Errorf("find daemon process %d: %w", pid, err)
	}
	if err := process.Kill(); err != nil {
		return 0, fmt.Errorf("kill pid %d: %w", pid, err)
	}

	if err := os.Remove(pidPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return pid, fmt.Errorf("remove pid file %s: %w", pidPath, err)
	}
	if lockPath != "" {
		_ = os.Remove(lockPath)
	}
	return pid, nil
}

// StopAndTerminate asks the daemon to stop over IPC, waits out gracePeriod,
// and force-kills the process if the socket is still answering afterwards.
func StopAndTerminate(socketPath string, cfg *config.Config, gracePeriod time.Duration) (StopResult, error) {
	client, err := ipc.Dial(socketPath)
	if err != nil {
		if isDaemonUnavailable(err) {
			return StopResult{}, ErrDaemonNotRunning
		}
		return StopResult{}, err
	}

	var result StopResult
	var lockPath string
	if status, err := client.Status(); err == nil && status != nil {
		lockPath = status.LockPath
		result.PID = status.PID
	}

	ack, err := client.Stop()
	_ = client.Close()
	if err != nil {
		return StopResult{}, err
	}
	result.StopAcknowledged = ack != nil && ack.Stopped

	_ = WaitForShutdown(socketPath, gracePeriod)
	alive, livePID, err := ProcessInfo(socketPath)
	if err != nil || !alive {
		return result, nil
	}

	pid := livePID
	if pid == 0 {
		pid = result.PID
	}
	runDir := DeriveLogDir(lockPath, cfg)
	if runDir == "" {
		return result, errors.New("cannot locate daemon runtime directory for forced stop")
	}
	killed, err := ForceKillProcess(
		filepath.Join(runDir, daemonrun.PIDFileName),
		filepath.Join(runDir, daemon.LockFileName),
		pid,
	)
	if err != nil {
		return result, fmt.Errorf("force stop daemon: %w", err)
	}
	_ = os.Remove(socketPath)

	result.ForcedKill = true
	result.PID = killed
	return result, nil
}

// Restart stops a running daemon, then starts a fresh one. A daemon that was
// not running is not an error; the start half still runs.
func Restart(socketPath string, cfg *config.Config, executablePath string, opts LaunchOptions, stopGracePeriod, startWaitTimeout time.Duration) (RestartResult, error) {
	var result RestartResult

	stop, err := StopAndTerminate(socketPath, cfg, stopGracePeriod)
	switch {
	case err == nil:
		result.WasRunning = true
		result.Stop = stop
	case errors.Is(err, ErrDaemonNotRunning):
	default:
		return RestartResult{}, err
	}

	start, err := EnsureStarted(socketPath, executablePath, opts, startWaitTimeout)
	if err != nil {
		return RestartResult{}, err
	}
	result.Start = start
	return result, nil
}

// BuildStatusSnapshot gathers everything `autofanfic status` renders. When
// the daemon is unreachable it answers from config and a direct read-only
// spool query instead, so status works offline.
func BuildStatusSnapshot(ctx context.Context, socketPath string, cfg *config.Config) (*ipc.StatusResponse, error) {
	if cfg == nil {
		return nil, errors.New("no configuration to answer from")
	}

	snapshot := &ipc.StatusResponse{}
	if client, err := ipc.Dial(socketPath); err == nil {
		defer client.Close()
		if resp, err := client.Status(); err == nil && resp != nil {
			snapshot = resp
		}
	}

	if snapshot.WatchDir == "" {
		snapshot.WatchDir = cfg.Paths.WatchDir
	}
	if snapshot.SpoolDBPath == "" {
		snapshot.SpoolDBPath = cfg.SpoolDatabasePath()
	}
	if snapshot.LockPath == "" {
		snapshot.LockPath = filepath.Join(cfg.Paths.LogDir, daemon.LockFileName)
	}

	if !snapshot.Running {
		readCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		if store, err := queue.Open(cfg); err == nil {
			svc := api.NewSpoolService(store)
			if stats, err := svc.Stats(readCtx); err == nil {
				snapshot.SpoolStats = stats
			}
			if bySite, err := svc.BySite(readCtx); err == nil {
				snapshot.SpoolBySite = bySite
			}
			_ = store.Close()
		}
	}

	snapshot.SystemChecks = BuildSystemChecks(cfg, snapshot)
	snapshot.PathChecks = BuildPathChecks(cfg)
	return snapshot, nil
}

// isDaemonUnavailable distinguishes "nothing is listening" from a daemon
// that answered badly.
func isDaemonUnavailable(err error) bool {
	if errors.Is(err, os.ErrNotExist) || os.IsNotExist(err) {
		return true
	}
	return errors.Is(err, syscall.ENOENT) || errors.Is(err, syscall.ECONNREFUSED)
}

// BuildSystemChecks assembles the status lines covering the daemon process,
// folder watching, fanfiction.net handling, and notification readiness.
func BuildSystemChecks(cfg *config.Config, status *ipc.StatusResponse) []api.StatusLine {
	lines := make([]api.StatusLine, 0, 5)

	if status != nil && status.Running {
		lines = append(lines, api.StatusLine{Label: "Daemon", Severity: api.SeverityOK, Detail: fmt.Sprintf("Running (pid %d)", status.PID)})
		lines = append(lines, api.StatusLine{Label: "Folder Watch", Severity: api.SeverityOK, Detail: watchDetail(cfg, status)})
		if status.MonitorAlive {
			lines = append(lines, api.StatusLine{Label: "Change Events", Severity: api.SeverityOK, Detail: "Filesystem notifications active"})
		} else {
			lines = append(lines, api.StatusLine{Label: "Change Events", Severity: api.SeverityWarn, Detail: "Polling only (filesystem notifications unavailable)"})
		}
	} else {
		lines = append(lines, api.StatusLine{Label: "Daemon", Severity: api.SeverityWarn, Detail: "Not running (run `autofanfic start`)"})
		lines = append(lines, api.StatusLine{Label: "Folder Watch", Severity: api.SeverityInfo, Detail: "Inactive (daemon not running)"})
	}

	if cfg.Watcher.DisableFanfictionNet {
		lines = append(lines, api.StatusLine{Label: sites.FanFictionNet, Severity: api.SeverityInfo, Detail: "Diverted to notifications"})
	} else {
		lines = append(lines, api.StatusLine{Label: sites.FanFictionNet, Severity: api.SeverityOK, Detail: "Queued like other sites"})
	}

	notify := preflight.CheckNotifications(cfg)
	severity := api.SeverityOK
	if !notify.Passed {
		severity = api.SeverityWarn
	}
	lines = append(lines, api.StatusLine{Label: "Notifications", Severity: severity, Detail: notify.Detail})

	return lines
}

func watchDetail(cfg *config.Config, status *ipc.StatusResponse) string {
	detail := fmt.Sprintf("Polling every %s", cfg.PollInterval())
	if status.CycleCount > 0 {
		detail += fmt.Sprintf(", %d cycles completed", status.CycleCount)
	}
	return detail
}

// BuildPathChecks probes the watch, data, and log directories for access.
func BuildPathChecks(cfg *config.Config) []api.StatusLine {
	checks := []struct {
		label string
		path  string
	}{
		{label: "Watch", path: cfg.Paths.WatchDir},
		{label: "Data", path: cfg.Paths.DataDir},
		{label: "Logs", path: cfg.Paths.LogDir},
	}

	lines := make([]api.StatusLine, 0, len(checks))
	for _, check := range checks {
		result := preflight.CheckDirectoryAccess(check.label, check.path)
		severity := api.SeverityError
		if result.Passed {
			severity = api.SeverityOK
		}
		lines = append(lines, api.StatusLine{Label: check.label, Severity: severity, Detail: result.Detail})
	}
	return lines
}
