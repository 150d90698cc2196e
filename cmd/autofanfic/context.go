package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ArcCdr/AutomatedFanfic/internal/config"
	"github.com/ArcCdr/AutomatedFanfic/internal/ipc"
	"github.com/ArcCdr/AutomatedFanfic/internal/queue"
)

// cliContext lazily loads configuration and resolves the daemon socket for
// every subcommand. Flag pointers are registered on the root command before
// parsing, so values are only read inside RunE bodies.
type cliContext struct {
	socketFlag *string
	configFlag *string

	cfgOnce sync.Once
	cfg     *config.Config
	cfgErr  error
}

func newCLIContext(socketFlag, configFlag *string) *cliContext {
	return &cliContext{socketFlag: socketFlag, configFlag: configFlag}
}

func (c *cliContext) ensureConfig() (*config.Config, error) {
	c.cfgOnce.Do(func() {
		c.cfg, c.cfgErr = c.loadConfig()
	})
	return c.cfg, c.cfgErr
}

func (c *cliContext) loadConfig() (*config.Config, error) {
	cfg, _, _, err := config.Load(c.configFlagValue())
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *cliContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *cliContext) configFlagValue() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

// socketPath resolves the daemon socket, writing the default back into the
// flag so launch options forward the same path the CLI used.
func (c *cliContext) socketPath() string {
	if c.socketFlag != nil && strings.TrimSpace(*c.socketFlag) != "" {
		return *c.socketFlag
	}
	resolved := c.defaultSocketPath()
	if c.socketFlag != nil {
		*c.socketFlag = resolved
	}
	return resolved
}

func (c *cliContext) defaultSocketPath() string {
	if cfg := c.configValue(); cfg != nil {
		return ipc.DefaultSocketPath(cfg)
	}
	logDir, err := config.ExpandPath("~/.local/share/autofanfic/logs")
	if err != nil {
		return filepath.Join(os.TempDir(), ipc.SocketFileName)
	}
	return filepath.Join(logDir, ipc.SocketFileName)
}

func (c *cliContext) withClient(fn func(*ipc.Client) error) error {
	client, err := c.dialClient()
	if err != nil {
		return err
	}
	defer client.Close()
	return fn(client)
}

func (c *cliContext) dialClient() (*ipc.Client, error) {
	socket := c.socketPath()
	client, err := ipc.Dial(socket)
	if err != nil {
		return nil, wrapDialError(socket, err)
	}
	return client, nil
}

// withSpool runs fn against the daemon when it is reachable, otherwise
// against the spool database directly. Exactly one of client and store is
// non-nil inside fn.
func (c *cliContext) withSpool(fn func(*ipc.Client, *queue.Store) error) error {
	socket := c.socketPath()
	client, err := ipc.Dial(socket)
	if err == nil {
		defer client.Close()
		return fn(client, nil)
	}
	if !daemonUnreachable(err) {
		return wrapDialError(socket, err)
	}

	cfg, cfgErr := c.ensureConfig()
	if cfgErr != nil {
		return cfgErr
	}
	store, openErr := queue.Open(cfg)
	if openErr != nil {
		return fmt.Errorf("open spool database: %w", openErr)
	}
	defer store.Close()
	return fn(nil, store)
}

func daemonUnreachable(err error) bool {
	if errors.Is(err, os.ErrNotExist) || os.IsNotExist(err) {
		return true
	}
	return errors.Is(err, syscall.ENOENT) || errors.Is(err, syscall.ECONNREFUSED)
}

func wrapDialError(socket string, err error) error {
	switch {
	case os.IsNotExist(err) || errors.Is(err, syscall.ENOENT):
		return fmt.Errorf("connect to daemon: no socket at %s; run `autofanfic start` first", socket)
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("connect to daemon: socket %s is stale or refusing connections; is the daemon running?", socket)
	default:
		return fmt.Errorf("connect to daemon at %s: %w", socket, err)
	}
}

func skipsConfigLoad(cmd *cobra.Command) bool {
	for cur := cmd; cur != nil; cur = cur.Parent() {
		if cur.Annotations != nil && cur.Annotations["noConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
