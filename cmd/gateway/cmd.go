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
	"io"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/flocknet/flock/cmd/flag"
	"github.com/flocknet/flock/common/metrics"
	"github.com/flocknet/flock/common/process"
	"github.com/flocknet/flock/gateway"
)

var (
	conf        = gateway.NewConfig()
	configFile  string
	metricsAddr string

	Cmd = &cobra.Command{
		Use:   "gateway",
		Short: "Start a gateway",
		Long:  `Start the routing gateway in front of the storage shards`,
		Run:   exec,
	}
)

func init() {
	flag.BindAddr(Cmd, &conf.BindAddress, conf.BindAddress)
	flag.MetricsAddr(Cmd, &metricsAddr)
	Cmd.Flags().StringVarP(&configFile, "conf", "f", "",
		"Cluster config file with the shard list")
	Cmd.Flags().DurationVar(&conf.HealthCheckInterval, "health-check-interval",
		conf.HealthCheckInterval, "Period of the background shard health checks")
	Cmd.Flags().DurationVar(&conf.ProbeTimeout, "probe-timeout",
		conf.ProbeTimeout, "Timeout of a single shard health probe")
	Cmd.Flags().DurationVar(&conf.WriteTimeout, "write-timeout",
		conf.WriteTimeout, "Timeout of a forwarded write")
	Cmd.Flags().DurationVar(&conf.ReadTimeout, "read-timeout",
		conf.ReadTimeout, "Per-shard timeout of a scatter-gather read")
}

func exec(*cobra.Command, []string) {
	process.RunProcess(func() (io.Closer, error) {
		cluster, err := loadClusterConfig(viper.New())
		if err != nil {
			return nil, err
		}
		conf.Cluster = cluster

		closers := make([]io.Closer, 0, 2)
		if metricsAddr != "" {
			m, err := metrics.Start(metricsAddr)
			if err != nil {
				return nil, err
			}
			closers = append(closers, m)
		}

		g, err := gateway.New(conf)
		if err != nil {
			return nil, err
		}
		return process.MultiCloser(append(closers, g)...), nil
	})
}

func loadClusterConfig(v *viper.Viper) (gateway.ClusterConfig, error) {
	cc := gateway.ClusterConfig{}

	v.SetConfigType("yaml")
	if configFile == "" {
		v.SetConfigName("cluster")
		v.AddConfigPath("/flock/conf")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(configFile)
	}

	if err := v.ReadInConfig(); err != nil {
		return cc, errors.Wrap(err, "failed to read cluster config")
	}

	if err := v.Unmarshal(&cc, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(), // default hook
		mapstructure.StringToSliceHookFunc(","),     // default hook
	))); err != nil {
		return cc, errors.Wrap(err, "failed to load cluster config")
	}
	return cc, nil
}
