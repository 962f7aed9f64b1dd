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
	"bytes"
	"log/slog"
	"path"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/flocknet/flock/dfs"
)

const (
	DefaultMaxConnectAttempts = 5
	DefaultConnectBackoff     = 3 * time.Second
)

type Options struct {
	ShardID string

	// NamenodeAddr is the HDFS namenode host:port.
	NamenodeAddr string
	HDFSUser     string

	// DataDir is the local root used for fallback storage in degraded mode.
	DataDir string

	MaxConnectAttempts uint64
	ConnectBackoff     time.Duration

	// newBackend overrides the distributed backend factory in tests.
	newBackend func() (dfs.Filesystem, error)
}

// NewStore connects to the distributed backend, retrying up to
// MaxConnectAttempts times with ConnectBackoff between attempts. Every
// attempt must pass a capability self-test before it is accepted. If all
// attempts fail the node commits to degraded mode: the store transparently
// runs on local disk under DataDir for the rest of the process lifetime.
func NewStore(opts Options) (*Store, error) {
	if opts.MaxConnectAttempts == 0 {
		opts.MaxConnectAttempts = DefaultMaxConnectAttempts
	}
	if opts.ConnectBackoff == 0 {
		opts.ConnectBackoff = DefaultConnectBackoff
	}
	if opts.newBackend == nil {
		opts.newBackend = func() (dfs.Filesystem, error) {
			return dfs.NewHDFS(opts.NamenodeAddr, opts.HDFSUser)
		}
	}

	log := slog.With(
		slog.String("component", "node-bootstrap"),
		slog.String("shard", opts.ShardID),
	)
	layout := Layout{ShardID: opts.ShardID}

	fs, err := connect(log, layout, opts)
	if err == nil {
		return newStore(fs, layout, Connected, opts.NamenodeAddr)
	}

	log.Error(
		"Could not reach distributed backend, entering degraded mode",
		slog.Any("error", err),
		slog.String("data-dir", opts.DataDir),
	)

	local, err := dfs.NewLocal(opts.DataDir)
	if err != nil {
		return nil, err
	}
	return newStore(local, layout, Degraded, "")
}

func connect(log *slog.Logger, layout Layout, opts Options) (dfs.Filesystem, error) {
	var fs dfs.Filesystem

	err := backoff.RetryNotify(func() error {
		f, err := opts.newBackend()
		if err != nil {
			return err
		}
		if err = selfTest(f, layout); err != nil {
			_ = f.Close()
			return err
		}

		fs = f
		return nil
	}, backoff.WithMaxRetries(
		backoff.NewConstantBackOff(opts.ConnectBackoff),
		opts.MaxConnectAttempts-1,
	), func(err error, duration time.Duration) {
		log.Warn(
			"Backend connection attempt failed",
			slog.Any("error", err),
			slog.Duration("retry-after", duration),
		)
	})
	if err != nil {
		return nil, err
	}
	return fs, nil
}

// selfTest verifies the backend actually provides the capabilities the
// store depends on: create a scratch directory, write a marker file, read
// it back and compare byte for byte.
func selfTest(fs dfs.Filesystem, layout Layout) error {
	scratch := path.Join(layout.ShardRoot(), ".probe")
	if err := fs.MkdirAll(scratch); err != nil {
		return err
	}

	marker := path.Join(scratch, "marker")
	payload := []byte(uuid.NewString())
	if err := fs.WriteFile(marker, payload); err != nil {
		return err
	}

	read, err := fs.ReadFile(marker)
	if err != nil {
		return err
	}
	if !bytes.Equal(payload, read) {
		return errors.Errorf("backend self-test failed: marker mismatch on %s", marker)
	}
	return nil
}
