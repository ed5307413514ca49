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

package grpcutil

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/osrg/gosai/pkg/log"
)

// CertReloader serves the gRPC API certificate and reloads it when one of
// its files changes on disk. A failed reload keeps the previous config.
type CertReloader struct {
	logger       log.Logger
	certFilePath string
	keyFilePath  string
	caFilePath   string

	mu            sync.Mutex
	currentConfig *tls.Config
}

func NewCertReloader(logger log.Logger, certFilePath, keyFilePath, caFilePath string) (*CertReloader, error) {
	r := &CertReloader{
		logger:       logger,
		certFilePath: certFilePath,
		keyFilePath:  keyFilePath,
		caFilePath:   caFilePath,
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *CertReloader) files() []string {
	l := []string{r.certFilePath, r.keyFilePath}
	if r.caFilePath != "" {
		l = append(l, r.caFilePath)
	}
	return l
}

// Watch reloads the certificates on every change of their files until ctx
// is done.
func (r *CertReloader) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	watched := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, f := range r.files() {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		watched[abs] = true
		// editors and secret mounts replace files, so watch the directory
		dirs[filepath.Dir(abs)] = true
	}
	for d := range dirs {
		if err := w.Add(d); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !watched[ev.Name] || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			r.logger.Debug("Reloading certificates", log.Fields{
				"Topic": "grpc",
				"Key":   ev.Name,
			})
			if err := r.Reload(); err != nil {
				r.logger.Warn("Error reloading certificates, keeping existing ones", log.Fields{
					"Topic": "grpc",
					"Error": err,
				})
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("certificate watcher failed", log.Fields{
				"Topic": "grpc",
				"Error": err,
			})
		}
	}
}

func (r *CertReloader) Reload() error {
	cert, err := tls.LoadX509KeyPair(r.certFilePath, r.keyFilePath)
	if err != nil {
		return fmt.Errorf("server certificate/key pair: %w", err)
	}
	tlsConfig := &tls.Config{Certificates: []tls.Certificate{cert}, NextProtos: []string{"h2"}}

	if r.caFilePath != "" {
		pemCerts, err := os.ReadFile(r.caFilePath)
		if err != nil {
			return fmt.Errorf("client CA certificates: %w", err)
		}
		tlsConfig.ClientCAs = x509.NewCertPool()
		if !tlsConfig.ClientCAs.AppendCertsFromPEM(pemCerts) {
			return fmt.Errorf("no valid client CA certificates in %q", r.caFilePath)
		}
		tlsConfig.ClientAuth = tls.RequireAndVerifyClientCert
	}

	r.mu.Lock()
	r.currentConfig = tlsConfig
	r.mu.Unlock()
	return nil
}

func (r *CertReloader) getConfigForClient(_ *tls.ClientHelloInfo) (*tls.Config, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentConfig, nil
}

// ServerConfig returns a config that always hands out the latest loaded
// certificate.
func (r *CertReloader) ServerConfig() *tls.Config {
	return &tls.Config{
		GetConfigForClient: r.getConfigForClient,
	}
}
