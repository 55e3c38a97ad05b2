package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	glspserver "github.com/tliron/glsp/server"

	"github.com/CWBudde/gosym-lsp/internal/config"
	"github.com/CWBudde/gosym-lsp/internal/lsp"
	"github.com/CWBudde/gosym-lsp/internal/server"
)

var (
	tcpMode    bool
	tcpPort    int
	logLevel   string
	logFile    string
	configPath string
)

func init() {
	flag.BoolVar(&tcpMode, "tcp", false, "Run server in TCP mode (for debugging)")
	flag.IntVar(&tcpPort, "port", 0, "TCP port to listen on (used with -tcp, default from config)")
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, notice, warn, error")
	flag.StringVar(&logFile, "log-file", "", "Log file path (default: stderr)")
	flag.StringVar(&configPath, "config", "", "Configuration file (default: "+config.FileName+" in the working directory)")
	flag.Usage = usage
}

func usage() {
	fmt.Fprintf(os.Stderr, "gosym-lsp version %s\n\n", lsp.Version)
	fmt.Fprintf(os.Stderr, "Usage: gosym-lsp [options]\n\n")
	fmt.Fprintf(os.Stderr, "Language server resolving references and inferring types in Go source\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Parse()

	if flag.NArg() > 0 && flag.Arg(0) == "version" {
		fmt.Printf("gosym-lsp version %s\n", lsp.Version)
		os.Exit(0)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg)

	fmt.Fprintf(os.Stderr, "gosym-lsp version %s starting...\n", lsp.Version)
	fmt.Fprintf(os.Stderr, "Log level: %s\n", cfg.Log.Level)

	srv := server.New(cfg)
	lsp.SetServer(srv)

	handler := lsp.NewHandler()
	glspServer := glspserver.NewServer(&handler, "gosym-lsp", false)

	if cfg.LSP.TCP {
		fmt.Fprintf(os.Stderr, "Starting TCP server on port %d...\n", cfg.LSP.Port)
		if err := glspServer.RunTCP(fmt.Sprintf("127.0.0.1:%d", cfg.LSP.Port)); err != nil {
			log.Fatalf("TCP server error: %v", err)
		}
	} else {
		fmt.Fprintf(os.Stderr, "Starting STDIO server...\n")
		if err := glspServer.RunStdio(); err != nil {
			log.Fatalf("STDIO server error: %v", err)
		}
	}
}

// loadConfig reads the configuration file and applies the command-line overrides.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)

	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadWorkspace(".")
	}

	if err != nil {
		return nil, err
	}

	if tcpMode {
		cfg.LSP.TCP = true
	}
	if tcpPort != 0 {
		cfg.LSP.Port = tcpPort
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}

	return cfg, cfg.Validate()
}

// setupLogging sends the standard logger and commonlog to the configured destination.
func setupLogging(cfg *config.Config) {
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		log.SetOutput(f)
	} else {
		log.SetOutput(os.Stderr)
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg.ConfigureLogging()
}
