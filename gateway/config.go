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

import "time"

// ShardConfig is one static registry entry.
type ShardConfig struct {
	Shard string `json:"shard" yaml:"shard"`
	Addr  string `json:"addr" yaml:"addr"`
}

// ClusterConfig is the fixed shard membership, loaded once at startup.
type ClusterConfig struct {
	Shards []ShardConfig `json:"shards" yaml:"shards"`
}

type Config struct {
	BindAddress string

	// HealthCheckInterval is the period of the background probe loop.
	HealthCheckInterval time.Duration
	// ProbeTimeout bounds a single liveness probe.
	ProbeTimeout time.Duration
	// WriteTimeout bounds a forwarded create.
	WriteTimeout time.Duration
	// ReadTimeout bounds each per-shard call of a scatter-gather read.
	ReadTimeout time.Duration
	// StatsTimeout bounds each per-shard stats detail fetch.
	StatsTimeout time.Duration

	Cluster ClusterConfig
}

func NewConfig() Config {
	return Config{
		BindAddress:         "0.0.0.0:8080",
		HealthCheckInterval: 30 * time.Second,
		ProbeTimeout:        5 * time.Second,
		WriteTimeout:        10 * time.Second,
		ReadTimeout:         10 * time.Second,
		StatsTimeout:        5 * time.Second,
	}
}
