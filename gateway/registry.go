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
	"sync"
	"time"

	"github.com/flocknet/flock/common/metrics"
	"github.com/flocknet/flock/model"
)

var (
	probeFailures = metrics.NewCounterVec(
		"flock_gateway_probe_failures_total",
		"The number of failed health probes per shard",
		"shard")
	shardHealthy = metrics.NewGaugeVec(
		"flock_gateway_shard_healthy",
		"Whether the gateway considers the shard healthy",
		"shard")
)

// ShardStatus is a point-in-time view of one registry entry.
type ShardStatus struct {
	ShardID   string `json:"shard_id"`
	Addr      string `json:"addr"`
	Healthy   bool   `json:"healthy"`
	Load      int64  `json:"load"`
	LastProbe string `json:"last_probe,omitempty"`
}

// Target is a routable shard reference taken from a registry snapshot.
type Target struct {
	index   int
	ShardID string
	Load    int64
	Client  ShardClient
}

type shardState struct {
	id     string
	addr   string
	client ShardClient

	healthy   bool
	load      int64
	lastProbe time.Time
}

// Registry holds the fixed set of shard descriptors, built once from
// configuration. Membership never changes at runtime; only the health-check
// loop mutates the descriptors, and every mutation or read goes through the
// registry lock so a reader can never observe a half-updated descriptor.
// Shards start out assumed healthy until the first probe completes.
type Registry struct {
	mu     sync.RWMutex
	shards []*shardState
}

func NewRegistry(shards []ShardConfig, newClient func(addr string) ShardClient) *Registry {
	r := &Registry{
		shards: make([]*shardState, 0, len(shards)),
	}
	for _, sc := range shards {
		r.shards = append(r.shards, &shardState{
			id:      sc.Shard,
			addr:    sc.Addr,
			client:  newClient(sc.Addr),
			healthy: true,
		})
		shardHealthy.WithLabelValues(sc.Shard).Set(1)
	}
	return r
}

func (r *Registry) Size() int {
	return len(r.shards)
}

// Snapshot returns all shard statuses in configuration order.
func (r *Registry) Snapshot() []ShardStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	statuses := make([]ShardStatus, 0, len(r.shards))
	for _, s := range r.shards {
		status := ShardStatus{
			ShardID: s.id,
			Addr:    s.addr,
			Healthy: s.healthy,
			Load:    s.load,
		}
		if !s.lastProbe.IsZero() {
			status.LastProbe = model.FormatTimestamp(s.lastProbe)
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// HealthyTargets returns the currently healthy shards, in configuration
// order, with the load each had at snapshot time.
func (r *Registry) HealthyTargets() []Target {
	r.mu.RLock()
	defer r.mu.RUnlock()

	targets := make([]Target, 0, len(r.shards))
	for i, s := range r.shards {
		if s.healthy {
			targets = append(targets, Target{
				index:   i,
				ShardID: s.id,
				Load:    s.load,
				Client:  s.client,
			})
		}
	}
	return targets
}

// AllTargets returns every shard regardless of health, for probing and
// stats detail collection.
func (r *Registry) AllTargets() []Target {
	targets := make([]Target, 0, len(r.shards))
	for i, s := range r.shards {
		targets = append(targets, Target{
			index:   i,
			ShardID: s.id,
			Client:  s.client,
		})
	}
	return targets
}

// ApplyProbe records the outcome of one health probe. A successful probe
// refreshes the load metric; a failed one flips health off but keeps the
// previous load value (stale load is acceptable, stale health is not).
func (r *Registry) ApplyProbe(t Target, health model.NodeHealth, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.shards[t.index]
	s.lastProbe = time.Now()
	if err != nil {
		s.healthy = false
		probeFailures.WithLabelValues(s.id).Inc()
		shardHealthy.WithLabelValues(s.id).Set(0)
		return
	}

	s.healthy = true
	s.load = health.PostCount
	shardHealthy.WithLabelValues(s.id).Set(1)
}

// BumpLoad optimistically increments a shard's cached load after a routed
// write, so the next routing decision sees the pending write without
// waiting for the next probe.
func (r *Registry) BumpLoad(t Target) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shards[t.index].load++
}
