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

package node

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/flocknet/flock/cmd/flag"
	"github.com/flocknet/flock/common/metrics"
	"github.com/flocknet/flock/common/process"
	"github.com/flocknet/flock/node"
)

var (
	opts        node.Options
	bindAddr    string
	metricsAddr string

	Cmd = &cobra.Command{
		Use:   "node",
		Short: "Start a storage node",
		Long:  `Start a storage node owning one shard of posts and comments`,
		Run:   exec,
	}
)

func init() {
	flag.BindAddr(Cmd, &bindAddr, "0.0.0.0:5000")
	flag.MetricsAddr(Cmd, &metricsAddr)
	Cmd.Flags().StringVarP(&opts.ShardID, "shard", "s", "",
		"Identifier of the shard owned by this node")
	Cmd.Flags().StringVar(&opts.NamenodeAddr, "namenode-addr", "namenode:9000",
		"HDFS namenode address")
	Cmd.Flags().StringVar(&opts.HDFSUser, "hdfs-user", "flock",
		"HDFS user to connect as")
	Cmd.Flags().StringVar(&opts.DataDir, "data-dir", "./data",
		"Local directory for fallback storage when the backend is unreachable")
	Cmd.Flags().Uint64Var(&opts.MaxConnectAttempts, "connect-attempts",
		node.DefaultMaxConnectAttempts, "Backend connection attempts before committing to degraded mode")
	Cmd.Flags().DurationVar(&opts.ConnectBackoff, "connect-backoff",
		node.DefaultConnectBackoff, "Wait between backend connection attempts")
	_ = Cmd.MarkFlagRequired("shard")
}

func exec(*cobra.Command, []string) {
	process.RunProcess(func() (io.Closer, error) {
		closers := make([]io.Closer, 0, 2)
		if metricsAddr != "" {
			m, err := metrics.Start(metricsAddr)
			if err != nil {
				return nil, err
			}
			closers = append(closers, m)
		}

		store, err := node.NewStore(opts)
		if err != nil {
			return nil, err
		}

		server, err := node.NewServer(store, bindAddr)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		return process.MultiCloser(append(closers, server)...), nil
	})
}
