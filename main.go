/*
vklayout builds a Vulkan pipeline layout from a TOML description against the
first suitable device, and optionally rebuilds it whenever the file changes.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/vklayout/engine"
	"github.com/spaghettifunk/vklayout/engine/core"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML configuration file")
	watch := flag.Bool("watch", false, "rebuild the layout whenever the description changes")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-config file] [-watch] layout.toml\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := core.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = core.LoadConfig(*configPath); err != nil {
			core.LogFatal("failed to load config: %s", err)
		}
	}

	e, err := engine.New(&engine.ApplicationConfig{
		Config:     cfg,
		LayoutPath: flag.Arg(0),
		Watch:      *watch,
	})
	if err != nil {
		core.LogFatal(err.Error())
	}

	if err := e.Initialize(); err != nil {
		core.LogFatal("failed to initialize: %s", err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	// start shutdown goroutine
	go func() {
		<-sigCh
		_ = e.Shutdown()
	}()

	if err := e.Run(); err != nil {
		core.LogFatal(err.Error())
	}
}
