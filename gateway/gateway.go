// Copyright 2025 StreamNative, Inc.
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

// Package gateway routes writes to the least-loaded healthy shard, probes
// shard liveness in the background and assembles reads that span shards.
package gateway

import (
	"log/slog"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

type Gateway struct {
	log      *slog.Logger
	config   Config
	registry *Registry
	monitor  *healthMonitor
	server   *server
}

func New(config Config) (*Gateway, error) {
	if len(config.Cluster.Shards) == 0 {
		return nil, errors.New("cluster config has no shards")
	}

	httpClient := &http.Client{
		Transport: &http.Transport{
			MaxConnsPerHost:     maxFanOut,
			MaxIdleConnsPerHost: 2,
		},
	}

	g := &Gateway{
		log:    slog.With(slog.String("component", "gateway")),
		config: config,
		registry: NewRegistry(config.Cluster.Shards, func(addr string) ShardClient {
			return NewHTTPShardClient(addr, httpClient)
		}),
	}
	g.monitor = newHealthMonitor(g.registry, config.HealthCheckInterval, config.ProbeTimeout)

	var err error
	if g.server, err = newServer(g, config.BindAddress); err != nil {
		_ = g.monitor.Close()
		return nil, err
	}

	g.log.Info(
		"Started gateway",
		slog.Int("shards", g.registry.Size()),
	)
	return g, nil
}

func (g *Gateway) Port() int {
	return g.server.Port()
}

func (g *Gateway) Close() error {
	return multierr.Combine(
		g.monitor.Close(),
		g.server.Close(),
	)
}
