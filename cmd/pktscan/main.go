// Copyright (c) 2024 The Gnet Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command pktscan reads a marker-framed byte stream from stdin, writes the
// transcript of its well-formed frames to stdout and diagnostics to stderr.
package main

import (
	"bufio"
	"flag"
	"io"
	"os"

	"github.com/panjf2000/pktscan"
	"github.com/panjf2000/pktscan/pkg/buffer/ring"
	"github.com/panjf2000/pktscan/pkg/logging"
)

func main() {
	ignoreSIGPIPE()
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("pktscan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path of a TOML config file, flags given explicitly take precedence")
	fs.String("resync", pktscan.ResyncActive.String(), "resync policy on a start marker inside a payload: active | lenient")
	fs.Bool("drop-truncated", false, "drop frames cut short by the end of stream instead of reporting them")
	fs.Int("buffer", ring.DefaultBufferSize, "read-ahead window size in bytes")
	fs.String("log-level", logging.LogLevel(), "diagnostics level: debug | info | warn | error")
	fs.String("log-file", "", "write diagnostics to this file instead of stderr")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg := defaultConfig()
	var err error
	if *configPath != "" {
		if cfg, err = loadConfig(*configPath, cfg); err != nil {
			return fail(stderr, err)
		}
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "config" || err != nil {
			return
		}
		err = cfg.set(f.Name, f.Value.String())
	})
	if err != nil {
		return fail(stderr, err)
	}

	logger, flush, err := newLogger(cfg, stderr)
	if err != nil {
		return fail(stderr, err)
	}
	// The logger set up from the environment is replaced for the whole run.
	logging.Cleanup()
	logging.SetDefaultLoggerAndFlusher(logger, flush)
	defer logging.Cleanup()

	out := bufio.NewWriter(stdout)
	_, err = pktscan.Scan(stdin, out, cfg.options())
	if ferr := out.Flush(); err == nil {
		err = ferr
	}
	switch {
	case err == nil:
		return 0
	case isBrokenPipe(err):
		logging.Debugf("transcript reader went away: %v", err)
		return 0
	default:
		logging.Errorf("pktscan: %v", err)
		return 1
	}
}

func newLogger(cfg config, stderr io.Writer) (logging.Logger, logging.Flusher, error) {
	if cfg.logFile != "" {
		return logging.CreateLoggerAsLocalFile(cfg.logFile, cfg.logLevel)
	}
	logger, flush := logging.CreateLoggerAsWriter(stderr, cfg.logLevel)
	return logger, flush, nil
}

func fail(stderr io.Writer, err error) int {
	_, _ = io.WriteString(stderr, "pktscan: "+err.Error()+"\n")
	return 1
}
