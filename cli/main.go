package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tagsfs/tagsfs"
	"github.com/tagsfs/tagsfs/cmd"
	"github.com/tagsfs/tagsfs/cmd/builtin"
	"github.com/tagsfs/tagsfs/gateway"
	"github.com/tagsfs/tagsfs/gateway/consul"
	"github.com/tagsfs/tagsfs/gateway/memory"
	"github.com/tagsfs/tagsfs/gateway/postgres"
	"github.com/tagsfs/tagsfs/gateway/s3"
	"github.com/tagsfs/tagsfs/gateway/sqlite"
	"github.com/tagsfs/tagsfs/log"
	"github.com/tagsfs/tagsfs/monitor"
	"github.com/tagsfs/tagsfs/monitor/fsnotify"
	"github.com/tagsfs/tagsfs/monitor/poll"
	"github.com/tagsfs/tagsfs/source"
)

type cliFlags struct {
	root       string
	template   string
	gateway    string
	dsn        string
	monitor    string
	pollEvery  time.Duration
	logLevel   string
	logFile    string
	fallback   string
	elideEmpty bool
	tieBreak   string
	permissive bool
	extensions string
}

func parseFlags() *cliFlags {
	flags := &cliFlags{}

	flag.StringVar(&flags.root, "root", ".", "source directory holding the tagged files")
	flag.StringVar(&flags.template, "template", "%g/%a/%02n - %t.%e", "path template for the virtual namespace")
	flag.StringVar(&flags.gateway, "gateway", "memory", "tag store: memory, sqlite, postgres, consul or s3")
	flag.StringVar(&flags.dsn, "dsn", "", "gateway location (file path, connection string, address or endpoint,bucket,prefix,key,secret)")
	flag.StringVar(&flags.monitor, "monitor", "fsnotify", "source change monitor: fsnotify, poll or none")
	flag.DurationVar(&flags.pollEvery, "poll-every", 30*time.Second, "scan interval for the poll monitor")
	flag.StringVar(&flags.logLevel, "log-level", "info", "log verbosity: debug, info, warn or error")
	flag.StringVar(&flags.logFile, "log-file", "", "also log to this file, with rotation")
	flag.StringVar(&flags.fallback, "fallback", "?", "token shown for absent tags")
	flag.BoolVar(&flags.elideEmpty, "elide-empty", false, "drop path components that render empty")
	flag.StringVar(&flags.tieBreak, "tie-break", "", "tag ranking colliding files before suffixing")
	flag.BoolVar(&flags.permissive, "permissive-mkdir", false, "allow mkdir names the template cannot parse")
	flag.StringVar(&flags.extensions, "extensions", "", "comma-separated list of file extensions to admit")
	flag.Parse()

	return flags
}

func buildGateway(flags *cliFlags) (gateway.Gateway, error) {
	switch flags.gateway {
	case "memory":
		return memory.NewMemoryGateway(), nil

	case "sqlite":
		dsn := flags.dsn
		if dsn == "" {
			dsn = "tags.db"
		}
		return sqlite.NewSQLiteGateway(dsn)

	case "postgres":
		if flags.dsn == "" {
			return nil, fmt.Errorf("postgres gateway requires -dsn")
		}
		return postgres.NewPostgresGateway(flags.dsn)

	case "consul":
		config := &consul.ConsulGatewayConfig{}
		if flags.dsn != "" {
			config.Address = flags.dsn
		}
		return consul.NewConsulGateway(config)

	case "s3":
		parts := strings.Split(flags.dsn, ",")
		if len(parts) != 5 {
			return nil, fmt.Errorf("s3 gateway requires -dsn endpoint,bucket,prefix,key,secret")
		}
		return s3.NewS3Gateway(parts[0], parts[1], parts[2], parts[3], parts[4], false)

	default:
		return nil, fmt.Errorf("unknown gateway: %s", flags.gateway)
	}
}

func buildMonitor(flags *cliFlags) (monitor.Monitor, error) {
	switch flags.monitor {
	case "fsnotify":
		return fsnotify.NewFsnotifyMonitor()
	case "poll":
		return poll.NewPollMonitor(flags.root, flags.pollEvery), nil
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown monitor: %s", flags.monitor)
	}
}

func buildOptions(flags *cliFlags) ([]tagsfs.TagFileSystemOption, error) {
	level, err := log.Parse(flags.logLevel)
	if err != nil {
		return nil, err
	}

	opts := []tagsfs.TagFileSystemOption{
		tagsfs.WithLogLevel(level),
		tagsfs.WithFallback(flags.fallback),
	}

	if flags.logFile != "" {
		opts = append(opts, tagsfs.WithLogFile(flags.logFile))
	}
	if flags.elideEmpty {
		opts = append(opts, tagsfs.WithElideEmpty())
	}
	if flags.tieBreak != "" {
		opts = append(opts, tagsfs.WithTieBreakTag(flags.tieBreak))
	}
	if flags.permissive {
		opts = append(opts, tagsfs.WithMkdirPolicy(tagsfs.MkdirPermissive))
	}
	if flags.extensions != "" {
		exts := strings.Split(flags.extensions, ",")
		opts = append(opts, tagsfs.WithFilters(source.ExtensionFilter(exts...)))
	}

	mon, err := buildMonitor(flags)
	if err != nil {
		return nil, err
	}
	if mon != nil {
		opts = append(opts, tagsfs.WithMonitor(mon))
	}

	return opts, nil
}

// splitLine splits a shell line into fields, honoring double quotes so
// paths with spaces survive.
func splitLine(line string) []string {
	var fields []string
	var current strings.Builder
	inQuotes := false
	hasField := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			hasField = true
		case r == ' ' && !inQuotes:
			if hasField {
				fields = append(fields, current.String())
				current.Reset()
				hasField = false
			}
		default:
			current.WriteRune(r)
			hasField = true
		}
	}
	if hasField {
		fields = append(fields, current.String())
	}

	return fields
}

func repl(ctx context.Context, manager *cmd.Manager) {
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Print("> ")
	for scanner.Scan() {
		fields := splitLine(scanner.Text())

		if len(fields) > 0 {
			switch fields[0] {
			case "exit", "quit":
				return

			case "help":
				for _, command := range manager.List() {
					fmt.Printf("  %-28s %s\n", command.Usage(), command.Description())
				}

			default:
				if _, err := manager.Execute(ctx, os.Stdout, fields...); err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", fields[0], err)
				}
			}
		}

		fmt.Print("> ")
	}
}

func main() {
	flags := parseFlags()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gw, err := buildGateway(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gateway: %v\n", err)
		os.Exit(1)
	}

	opts, err := buildOptions(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "options: %v\n", err)
		os.Exit(1)
	}

	fs, err := tagsfs.New(flags.root, flags.template, gw, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup: %v\n", err)
		os.Exit(1)
	}

	if err := fs.Populate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "populate: %v\n", err)
		os.Exit(1)
	}

	manager := cmd.NewManager(fs)
	if err := builtin.InitBuiltin(manager); err != nil {
		fmt.Fprintf(os.Stderr, "commands: %v\n", err)
		os.Exit(1)
	}

	repl(ctx, manager)

	if err := fs.Shutdown(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
		os.Exit(1)
	}
}
