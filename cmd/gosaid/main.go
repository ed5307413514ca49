// Copyright (C) 2024 Nippon Telegraph and Telephone Corporation.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/jessevdk/go-flags"
	"github.com/kr/pretty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	"github.com/osrg/gosai/internal/pkg/grpcutil"
	"github.com/osrg/gosai/internal/pkg/metrics"
	"github.com/osrg/gosai/internal/pkg/version"
	"github.com/osrg/gosai/pkg/config"
	"github.com/osrg/gosai/pkg/sai"
	"github.com/osrg/gosai/pkg/server"
	"github.com/osrg/gosai/pkg/switchdb"
)

var logger = logrus.New()

type options struct {
	ConfigFile       string `short:"f" long:"config-file" description:"specifying a config file"`
	ConfigType       string `short:"t" long:"config-type" description:"specifying config type (toml, yaml, json)" default:"toml"`
	ConfigAutoReload bool   `short:"a" long:"config-auto-reload" description:"activate config auto reload on changes"`
	LogLevel         string `short:"l" long:"log-level" description:"specifying log level"`
	LogPlain         bool   `short:"p" long:"log-plain" description:"use plain format for logging (json by default)"`
	UseSyslog        string `short:"s" long:"syslog" description:"use syslogd"`
	Facility         string `long:"syslog-facility" description:"specify syslog facility"`
	DisableStdlog    bool   `long:"disable-stdlog" description:"disable standard logging"`
	GrpcHosts        string `long:"api-hosts" description:"specify the hosts that gosaid listens on" default:":50061"`
	Dry              bool   `short:"d" long:"dry-run" description:"check configuration"`
	MetricsHost      string `long:"metrics-host" description:"specify the host that gosaid serves metrics on" default:"localhost:6061"`
	MetricsPath      string `long:"metrics-path" description:"specify path for prometheus metrics, empty value disables them" default:"/metrics"`
	UseSdNotify      bool   `long:"sdnotify" description:"use sd_notify protocol"`
	TLS              bool   `long:"tls" description:"enable TLS authentication for gRPC API"`
	TLSCertFile      string `long:"tls-cert-file" description:"The TLS cert file"`
	TLSKeyFile       string `long:"tls-key-file" description:"The TLS key file"`
	TLSClientCAFile  string `long:"tls-client-ca-file" description:"Optional TLS client CA file to authenticate clients against"`
	Version          bool   `long:"version" description:"show version number"`
}

func setupLogger(opts *options) {
	switch opts.LogLevel {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	if opts.DisableStdlog {
		logger.SetOutput(io.Discard)
	} else {
		logger.SetOutput(os.Stdout)
	}

	if opts.UseSyslog != "" {
		if err := addSyslogHook(opts.UseSyslog, opts.Facility); err != nil {
			logger.Error("Unable to connect to syslog daemon, ", opts.UseSyslog)
		}
	}

	if opts.LogPlain {
		if opts.DisableStdlog {
			logger.SetFormatter(&logrus.TextFormatter{
				DisableColors: true,
			})
		}
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
}

func main() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		logger.Fatalf("Error parsing flags: %v", err)
	}

	if opts.Version {
		fmt.Println("gosaid version", version.Version())
		os.Exit(0)
	}

	setupLogger(&opts)

	if opts.Dry {
		c, err := config.ReadConfigFile(opts.ConfigFile, opts.ConfigType)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"Topic": "Config",
				"Error": err,
			}).Fatalf("Can't read config file %s", opts.ConfigFile)
		}
		logger.WithFields(logrus.Fields{
			"Topic": "Config",
		}).Info("Finished reading the config file")
		if opts.LogLevel == "debug" {
			pretty.Println(c)
		}
		os.Exit(0)
	}

	// the file decides the switch id, so it is read before the server exists
	var initialConfig *config.ConfigSet
	if opts.ConfigFile != "" {
		var err error
		initialConfig, err = config.ReadConfigFile(opts.ConfigFile, opts.ConfigType)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"Topic": "Config",
				"Error": err,
			}).Fatalf("Can't read config file %s", opts.ConfigFile)
		}
		logger.WithFields(logrus.Fields{
			"Topic": "Config",
		}).Info("Finished reading the config file")
	} else {
		initialConfig = &config.ConfigSet{}
		if err := config.SetDefaultConfigValues(nil, initialConfig); err != nil {
			logger.Fatal(err)
		}
	}
	grpcHosts := opts.GrpcHosts
	if initialConfig.Global.GrpcHosts != config.DefaultGrpcHosts {
		grpcHosts = initialConfig.Global.GrpcHosts
	}

	saiLogger := &builtinLogger{logger: logger}
	var grpcOpts []grpc.ServerOption
	if opts.TLS {
		reloader, err := grpcutil.NewCertReloader(saiLogger, opts.TLSCertFile, opts.TLSKeyFile, opts.TLSClientCAFile)
		if err != nil {
			logger.Fatalf("Failed to load TLS configuration: %v", err)
		}
		go func() {
			if err := reloader.Watch(context.Background()); err != nil {
				logger.Warnf("Certificates will not be reloaded: %v", err)
			}
		}()
		grpcOpts = append(grpcOpts, grpc.Creds(credentials.NewTLS(reloader.ServerConfig())))
	}

	logger.Info("gosaid started")
	db := switchdb.New()
	bridgeServer := server.NewBridgeServer(
		server.GrpcListenAddress(grpcHosts),
		server.GrpcOption(grpcOpts),
		server.LoggerOption(saiLogger),
		server.SwitchIDOption(sai.ObjectID(initialConfig.Global.SwitchID)),
		server.SwitchDBOption(db),
	)
	go func() {
		if err := bridgeServer.Serve(); err != nil {
			logger.WithFields(logrus.Fields{
				"Topic": "grpc",
				"Error": err,
			}).Error("gRPC API stopped")
		}
	}()

	if opts.MetricsPath != "" {
		prometheus.MustRegister(metrics.NewBridgeCollector(bridgeServer))
		httpMux := http.NewServeMux()
		httpMux.Handle(opts.MetricsPath, promhttp.Handler())
		go func() {
			logger.Println(http.ListenAndServe(opts.MetricsHost, httpMux))
		}()
	}

	currentConfig, err := config.InitialConfig(context.Background(), bridgeServer, db, initialConfig)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"Topic": "Config",
			"Error": err,
		}).Fatalf("Failed to apply initial configuration %s", opts.ConfigFile)
	}

	if opts.UseSdNotify {
		if status, err := daemon.SdNotify(false, daemon.SdNotifyReady); !status {
			if err != nil {
				logger.Warnf("Failed to send notification via sd_notify(): %s", err)
			} else {
				logger.Warnf("The socket sd_notify() isn't available")
			}
		}
	}

	if opts.ConfigFile == "" {
		<-sigCh
		stopServer(bridgeServer, opts.UseSdNotify)
		return
	}

	signal.Notify(sigCh, syscall.SIGHUP)

	if opts.ConfigAutoReload {
		logger.WithFields(logrus.Fields{
			"Topic": "Config",
		}).Info("Watching for config changes to trigger auto-reload")

		// one write can fire several events
		rateLimiter := rate.Sometimes{Interval: 100 * time.Millisecond}
		config.WatchConfigFile(opts.ConfigFile, opts.ConfigType, func() {
			rateLimiter.Do(func() {
				logger.WithFields(logrus.Fields{
					"Topic": "Config",
				}).Info("Config changes detected, reloading configuration")
				sigCh <- syscall.SIGHUP
			})
		})
	}

	for sig := range sigCh {
		if sig != syscall.SIGHUP {
			stopServer(bridgeServer, opts.UseSdNotify)
			return
		}

		logger.WithFields(logrus.Fields{
			"Topic": "Config",
		}).Info("Reload the config file")
		newConfig, err := config.ReadConfigFile(opts.ConfigFile, opts.ConfigType)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"Topic": "Config",
				"Error": err,
			}).Warningf("Can't read config file %s", opts.ConfigFile)
			continue
		}
		if newConfig.Global.SwitchID != currentConfig.Global.SwitchID {
			logger.WithFields(logrus.Fields{
				"Topic": "Config",
			}).Warn("switch-id cannot change at runtime, keeping the current one")
			newConfig.Global.SwitchID = currentConfig.Global.SwitchID
		}

		currentConfig, err = config.UpdateConfig(context.Background(), bridgeServer, db, currentConfig, newConfig)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"Topic": "Config",
				"Error": err,
			}).Warningf("Failed to update config %s", opts.ConfigFile)
		}
	}
}

func stopServer(s *server.BridgeServer, useSdNotify bool) {
	logger.Info("stopping gosaid server")

	if useSdNotify {
		daemon.SdNotify(false, daemon.SdNotifyStopping)
	}
	if err := s.Deinit(context.Background()); err != nil {
		logger.WithFields(logrus.Fields{
			"Topic": "Bridge",
			"Error": err,
		}).Warn("failed to release the bridge module")
	}
	s.Stop()
}
