// Command autofanficd runs the watch folder daemon in the foreground.
// It is the systemd-friendly twin of `autofanfic daemon`; both paths share
// internal/daemonrun for the full lifecycle.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/ArcCdr/AutomatedFanfic/internal/daemonrun"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	socketPath := flag.String("socket", "", "control socket path override")
	diagnostic := flag.Bool("diagnostic", false, "enable debug logging")
	flag.Parse()

	err := daemonrun.Run(context.Background(), daemonrun.Options{
		ConfigPath: *configPath,
		SocketPath: *socketPath,
		Diagnostic: *diagnostic,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
