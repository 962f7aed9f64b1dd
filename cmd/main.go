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

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/flocknet/flock/cmd/gateway"
	"github.com/flocknet/flock/cmd/node"
	"github.com/flocknet/flock/common/logging"
	"github.com/flocknet/flock/common/process"
)

var (
	logLevelStr string

	rootCmd = &cobra.Command{
		Use:   "flock",
		Short: "Sharded feed store",
		Long: `Flock stores posts and comments across a fixed set of independent
storage shards, with a gateway that routes writes to the least-loaded
shard and assembles cross-shard reads.`,
		PersistentPreRunE: configureLogLevel,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevelStr, "log-level", "l",
		logging.DefaultLogLevel.String(), "Set logging level [debug|info|warn|error]")
	rootCmd.PersistentFlags().BoolVarP(&logging.LogJSON, "log-json", "j",
		false, "Print logs in JSON format")

	rootCmd.AddCommand(gateway.Cmd)
	rootCmd.AddCommand(node.Cmd)
}

func configureLogLevel(*cobra.Command, []string) error {
	level, err := logging.ParseLogLevel(logLevelStr)
	if err != nil {
		return err
	}
	logging.LogLevel = level
	logging.ConfigureLogger()
	return nil
}

func main() {
	process.DoWithLabels(map[string]string{
		"flock": "main",
	}, func() {
		if _, err := maxprocs.Set(); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if err := rootCmd.Execute(); err != nil {
			os.Exit(1)
		}
	})
}
