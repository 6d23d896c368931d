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

package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/panjf2000/pktscan"
	"github.com/panjf2000/pktscan/pkg/buffer/ring"
	"github.com/panjf2000/pktscan/pkg/logging"
)

type config struct {
	resync        pktscan.ResyncPolicy
	dropTruncated bool
	bufferSize    int
	logLevel      logging.Level
	logFile       string
}

type fileConfig struct {
	Resync        string `toml:"resync"`
	DropTruncated bool   `toml:"drop_truncated"`
	BufferSize    int    `toml:"buffer_size"`
	LogLevel      string `toml:"log_level"`
	LogFile       string `toml:"log_file"`
}

func defaultConfig() config {
	lvl, err := logging.ParseLevel(logging.LogLevel())
	if err != nil {
		lvl = logging.InfoLevel
	}
	return config{
		resync:     pktscan.ResyncActive,
		bufferSize: ring.DefaultBufferSize,
		logLevel:   lvl,
	}
}

func loadConfig(path string, cfg config) (config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config{}, errors.Wrap(err, "load config")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return config{}, errors.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("resync") {
		if err = cfg.set("resync", raw.Resync); err != nil {
			return config{}, err
		}
	}
	if meta.IsDefined("drop_truncated") {
		cfg.dropTruncated = raw.DropTruncated
	}
	if meta.IsDefined("buffer_size") {
		if err = cfg.set("buffer", fmt.Sprint(raw.BufferSize)); err != nil {
			return config{}, err
		}
	}
	if meta.IsDefined("log_level") {
		if err = cfg.set("log-level", raw.LogLevel); err != nil {
			return config{}, err
		}
	}
	if meta.IsDefined("log_file") {
		cfg.logFile = strings.TrimSpace(raw.LogFile)
	}
	return cfg, nil
}

// set applies one setting given in its flag form.
func (c *config) set(name, value string) error {
	value = strings.TrimSpace(value)
	switch name {
	case "resync":
		p, err := pktscan.ParseResyncPolicy(value)
		if err != nil {
			return errors.Wrap(err, "parse resync")
		}
		c.resync = p
	case "drop-truncated":
		switch strings.ToLower(value) {
		case "true", "1":
			c.dropTruncated = true
		case "false", "0":
			c.dropTruncated = false
		default:
			return errors.Errorf("parse drop-truncated: invalid boolean %q", value)
		}
	case "buffer":
		var n int
		if _, err := fmt.Sscan(value, &n); err != nil || n <= 0 {
			return errors.Errorf("parse buffer: %q is not a positive size", value)
		}
		c.bufferSize = n
	case "log-level":
		lvl, err := logging.ParseLevel(value)
		if err != nil {
			return errors.Wrap(err, "parse log-level")
		}
		c.logLevel = lvl
	case "log-file":
		c.logFile = value
	default:
		return errors.Errorf("unknown setting %q", name)
	}
	return nil
}

// options leaves the logger unset, the framer then reports to logging.GetDefaultLogger().
func (c config) options() pktscan.Option {
	return pktscan.WithOptions(pktscan.Options{
		ResyncPolicy:  c.resync,
		DropTruncated: c.dropTruncated,
		BufferSize:    c.bufferSize,
	})
}
