package main

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"syscall"

	"scriptsync/logger"

	"github.com/spf13/pflag"
)

type Config struct {
	NsID                   int    `json:"ns_id"`
	LogLevel               string `json:"log_level"` // debug, info, warn, error
	DebugImmediateShutdown bool   `json:"debug_immediate_shutdown"`
}

type ServerMode string

const (
	ModeDaemon ServerMode = "daemon"
	ModeClient ServerMode = "client"
)

// Setup logger to log to a file in the same directory as the executable
// Caller must defer logger.Close()
func setupLogger(logLevel string) *logger.FileLogger {
	execDir := executableDir()
	logPath := filepath.Join(execDir, "scriptsync.log")

	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}

	level := logger.ParseLogLevel(logLevel)
	fileLogger := logger.New(f, level)
	log.SetOutput(fileLogger)
	return fileLogger
}

func executableDir() string {
	execPath, err := os.Executable()
	if err != nil {
		log.Fatalf("error getting executable path: %v", err)
	}
	return filepath.Dir(execPath)
}

func getSocketPath() string {
	return filepath.Join(executableDir(), "scriptsync.sock")
}

func getPidPath() string {
	return filepath.Join(executableDir(), "scriptsync.pid")
}

func isDaemonRunning() (bool, int) {
	data, err := os.ReadFile(getPidPath())
	if err != nil {
		return false, 0
	}

	pid, err := strconv.Atoi(string(data))
	if err != nil {
		return false, 0
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false, 0
	}

	// On Unix, Signal(0) checks if process exists
	err = process.Signal(syscall.Signal(0))
	return err == nil, pid
}

func loadConfig(logLevelOverride string) Config {
	var config Config
	if raw := os.Getenv("SCRIPTSYNC_CONFIG"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &config); err != nil {
			log.Fatalf("invalid config: %v", err)
		}
	}
	if logLevelOverride != "" {
		config.LogLevel = logLevelOverride
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}

	log.Printf("config: %+v", config)
	return config
}

func runDaemon(config Config) {
	fileLogger := setupLogger(config.LogLevel)
	defer fileLogger.Close()

	daemon, err := NewDaemon(config)
	if err != nil {
		log.Fatalf("error creating daemon: %v", err)
	}

	if err := daemon.Start(); err != nil {
		log.Fatalf("error starting daemon: %v", err)
	}
}

func runClient() {
	client := NewClient()

	if err := client.EnsureDaemonRunning(); err != nil {
		log.Fatalf("error ensuring daemon is running: %v", err)
	}

	if err := client.Connect(); err != nil {
		log.Fatalf("error connecting to daemon: %v", err)
	}
}

func main() {
	daemonMode := pflag.Bool("daemon", false, "run as the background daemon")
	logLevel := pflag.String("log-level", "", "override log level (trace, debug, info, warn, error)")
	pflag.Parse()

	mode := ModeClient
	if *daemonMode {
		mode = ModeDaemon
	}

	switch mode {
	case ModeDaemon:
		runDaemon(loadConfig(*logLevel))
	case ModeClient:
		runClient()
	}
}
