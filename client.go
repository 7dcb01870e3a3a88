package main

import (
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"scriptsync/logger"
)

// Client is the process the Neovim plugin actually spawns. It makes sure the
// daemon is up, then bridges the plugin's stdio msgpack-RPC stream to the
// daemon's unix socket. Keeping the daemon separate lets review state survive
// editor restarts while each editor instance still just talks stdio.
type Client struct {
	socketPath string
}

func NewClient() *Client {
	return &Client{
		socketPath: getSocketPath(),
	}
}

// Connect relays stdin to the socket and the socket back to stdout until
// either side closes. When the editor exits, stdin reaches EOF and closing
// the connection unblocks the other copy.
func (c *Client) Connect() error {
	conn, err := net.Dial("unix", c.socketPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	go func() {
		io.Copy(conn, os.Stdin)
		conn.Close()
	}()

	io.Copy(os.Stdout, conn)
	return nil
}

// EnsureDaemonRunning starts the daemon unless the pid file points at a live
// process.
func (c *Client) EnsureDaemonRunning() error {
	running, pid := isDaemonRunning()
	if running {
		logger.Debug("daemon already running with PID %d", pid)
		return nil
	}

	return c.startDaemon()
}

// startDaemon re-executes this binary with --daemon, detached from the
// editor's stdio so the daemon outlives this client process.
func (c *Client) startDaemon() error {
	logger.Debug("starting daemon...")

	cmd := []string{os.Args[0], "--daemon"}
	env := os.Environ()

	_, err := os.StartProcess(os.Args[0], cmd, &os.ProcAttr{
		Env:   env,
		Files: []*os.File{nil, nil, nil},
	})
	if err != nil {
		return err
	}

	return c.waitForDaemon()
}

// waitForDaemon polls until the freshly started daemon has written its pid
// file and the process behind it answers a signal-0 liveness check.
func (c *Client) waitForDaemon() error {
	for i := 0; i < 50; i++ { // up to 5 seconds
		if running, _ := isDaemonRunning(); running {
			logger.Debug("daemon started successfully")
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("daemon failed to start within timeout")
}
