// Command ewm computes exponentially weighted means of CSV columns.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"strings"

	"fortio.org/fortio/log"
	"github.com/google/subcommands"
	"github.com/uluyol/heyp-ewm/go/config"
)

var logLevels = map[string]log.Level{
	"debug":    log.Debug,
	"verbose":  log.Verbose,
	"info":     log.Info,
	"warning":  log.Warning,
	"error":    log.Error,
	"critical": log.Critical,
}

func setLogLevel(s string) error {
	lvl, ok := logLevels[strings.ToLower(s)]
	if !ok {
		return fmt.Errorf("invalid log level %q", s)
	}
	log.SetLogLevel(lvl)
	return nil
}

func main() {
	defaults, err := config.LoadDefaults()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ewm: %v\n", err)
		os.Exit(2)
	}

	var (
		logLevel   = flag.String("log-level", defaults.LogLevel, "one of debug, verbose, info, warning, error, critical")
		cpuProfile = flag.String("cpuprofile", "", "write cpu profile to `file`")
	)

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&meanCmd{defaults: defaults}, "")
	subcommands.Register(&sweepCmd{defaults: defaults}, "")
	subcommands.Register(new(genCmd), "testing")
	subcommands.Register(&benchCmd{defaults: defaults}, "testing")
	subcommands.ImportantFlag("log-level")

	flag.Parse()

	if err := setLogLevel(*logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "ewm: %v\n", err)
		os.Exit(2)
	}

	ret := 0
	func() {
		if *cpuProfile != "" {
			f, err := os.Create(*cpuProfile)
			if err != nil {
				log.Errf("could not create CPU profile: %v", err)
				ret = 1
				return
			}
			defer f.Close()
			if err := pprof.StartCPUProfile(f); err != nil {
				log.Errf("could not start CPU profile: %v", err)
				ret = 1
				return
			}
			defer pprof.StopCPUProfile()
		}

		ret = int(subcommands.Execute(context.Background()))
	}()

	os.Exit(ret)
}
