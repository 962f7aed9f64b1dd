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

// Package dfs abstracts the durable store a shard writes into. A storage
// node only needs a handful of filesystem capabilities: create directories,
// write and read whole files, list a directory and check for existence.
// Both the distributed backend (HDFS) and the local-disk fallback implement
// the same interface, which is what makes degraded mode invisible to the
// storage layer above it.
package dfs

import "io"

type Filesystem interface {
	io.Closer

	// Name identifies the backend in logs ("hdfs", "local", "memory").
	Name() string

	// MkdirAll creates dir and any missing parents. An already existing
	// directory is success, not an error.
	MkdirAll(dir string) error

	// WriteFile atomically replaces the file at path with data.
	WriteFile(path string, data []byte) error

	ReadFile(path string) ([]byte, error)

	// List returns the base names of the entries in dir. A missing
	// directory yields an empty result, not an error.
	List(dir string) ([]string, error)

	Exists(path string) (bool, error)
}
