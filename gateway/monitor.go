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

package gateway

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/flocknet/flock/common/process"
)

// maxFanOut bounds the concurrent outbound calls of any probe round or
// scatter-gather dispatch.
const maxFanOut = 16

// healthMonitor runs the background probe loop. It is the only writer of
// shard health state: request-path failures never flip health, so a single
// slow fan-out cannot destabilize routing. Each shard is probed under its
// own timeout and one shard's failure never delays another's evaluation.
type healthMonitor struct {
	log          *slog.Logger
	registry     *Registry
	interval     time.Duration
	probeTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

func newHealthMonitor(registry *Registry, interval, probeTimeout time.Duration) *healthMonitor {
	m := &healthMonitor{
		log:          slog.With(slog.String("component", "health-monitor")),
		registry:     registry,
		interval:     interval,
		probeTimeout: probeTimeout,
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())

	go process.DoWithLabels(map[string]string{
		"flock": "health-monitor",
	}, m.run)

	m.log.Info(
		"Started health monitor",
		slog.Duration("interval", interval),
		slog.Int("shards", registry.Size()),
	)
	return m
}

func (m *healthMonitor) run() {
	// First round right away so routing does not run on assumed health for
	// a full interval.
	m.probeAll()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.probeAll()
		case <-m.ctx.Done():
			return
		}
	}
}

func (m *healthMonitor) probeAll() {
	group := errgroup.Group{}
	group.SetLimit(maxFanOut)

	for _, target := range m.registry.AllTargets() {
		target := target
		group.Go(func() error {
			ctx, cancel := context.WithTimeout(m.ctx, m.probeTimeout)
			defer cancel()

			health, err := target.Client.Probe(ctx)
			if err != nil {
				m.log.Warn(
					"Shard health probe failed",
					slog.String("shard", target.ShardID),
					slog.Any("error", err),
				)
			}
			m.registry.ApplyProbe(target, health, err)
			return nil
		})
	}
	_ = group.Wait()
}

func (m *healthMonitor) Close() error {
	m.cancel()
	return nil
}
