package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/CWBudde/gosym-lsp/internal/config"
	"github.com/CWBudde/gosym-lsp/internal/mcptools"
)

var (
	projectDir string
	configPath string
	logFile    string
)

func init() {
	flag.StringVar(&projectDir, "project", ".", "Project directory to index")
	flag.StringVar(&configPath, "config", "", "Configuration file (default: "+config.FileName+" in the project directory)")
	flag.StringVar(&logFile, "log-file", "", "Log file path (default: stderr)")
	flag.Usage = usage
}

func usage() {
	fmt.Fprintf(os.Stderr, "gosym-mcp version %s\n\n", mcptools.Version)
	fmt.Fprintf(os.Stderr, "Usage: gosym-mcp [options]\n\n")
	fmt.Fprintf(os.Stderr, "MCP server answering definition, type and reference queries about Go source\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)

	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadWorkspace(projectDir)
	}
	if err != nil {
		log.Fatal(err)
	}

	if logFile != "" {
		cfg.Log.File = logFile
	}

	// stdout carries the protocol
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Fatalf("failed to open log file: %v", err)
		}
		log.SetOutput(f)
	} else {
		log.SetOutput(os.Stderr)
	}
	cfg.ConfigureLogging()

	tools, err := mcptools.NewTools(projectDir, cfg.IndexOptions())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Fprintf(os.Stderr, "gosym-mcp indexed %d files below %s\n", tools.FileCount(), tools.Root())

	if err := mcpserver.ServeStdio(mcptools.NewServer(tools)); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
