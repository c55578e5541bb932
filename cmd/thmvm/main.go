// Command thmvm loads a thm bytecode image and runs it, optionally
// exposing the HTTP/WebSocket control surface or a terminal step debugger.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thoriumlang/thm/config"
	"github.com/thoriumlang/thm/control"
	"github.com/thoriumlang/thm/debugger"
	"github.com/thoriumlang/thm/vm"
)

func main() {
	var (
		ramSize       = flag.Uint64("ram-size", 0, "RAM size in bytes (default: from config)")
		clockInterval = flag.Duration("clock-interval", 0, "interval between clock interrupts (default: from config)")
		apiServer     = flag.Bool("api-server", false, "start the HTTP/WebSocket control surface")
		apiAddr       = flag.String("api-addr", "", "control surface listen address (default: from config)")
		debugMode     = flag.Bool("debug", false, "start a terminal step debugger instead of free-running")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <image.bin>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "thmvm: loading config: %v\n", err)
		os.Exit(1)
	}

	size := cfg.Machine.RAMSize
	if *ramSize > 0 {
		size = uint32(*ramSize)
	}
	interval, err := time.ParseDuration(cfg.Machine.ClockInterval)
	if err != nil {
		interval = time.Microsecond
	}
	if *clockInterval > 0 {
		interval = *clockInterval
	}
	addr := cfg.API.Address
	if *apiAddr != "" {
		addr = *apiAddr
	}

	rom, err := os.ReadFile(flag.Arg(0)) // #nosec G304 -- user-supplied image path
	if err != nil {
		fmt.Fprintf(os.Stderr, "thmvm: reading %s: %v\n", flag.Arg(0), err)
		os.Exit(1)
	}

	host := vm.NewHost(size, rom, interval)
	host.Boot()
	defer host.Shutdown()

	if *debugMode {
		dbg := debugger.NewDebugger(host)
		tui := debugger.NewTUI(dbg)
		if err := tui.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "thmvm: debugger: %v\n", err)
			os.Exit(1)
		}
		return
	}

	var server *control.Server
	if *apiServer || cfg.API.Enabled {
		server = control.NewServer(host, addr)
		go func() {
			if err := server.Start(); err != nil {
				fmt.Fprintf(os.Stderr, "thmvm: control surface: %v\n", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	host.Run()
	for {
		select {
		case <-sigChan:
			host.StopRun()
			shutdown(server)
			return
		case <-time.After(100 * time.Millisecond):
			if !host.IsRunning() {
				shutdown(server)
				return
			}
		}
	}
}

func shutdown(server *control.Server) {
	if server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "thmvm: shutting down control surface: %v\n", err)
	}
}
