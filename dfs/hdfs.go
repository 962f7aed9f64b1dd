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

package dfs

import (
	"os"

	"github.com/colinmarc/hdfs/v2"
	"github.com/pkg/errors"
)

type hdfsFilesystem struct {
	client *hdfs.Client
}

// NewHDFS connects to the HDFS namenode at addr. The returned filesystem is
// backed by a single long-lived client connection.
func NewHDFS(addr, user string) (Filesystem, error) {
	client, err := hdfs.NewClient(hdfs.ClientOptions{
		Addresses: []string{addr},
		User:      user,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to hdfs namenode at %s", addr)
	}
	return &hdfsFilesystem{client: client}, nil
}

func (*hdfsFilesystem) Name() string {
	return "hdfs"
}

func (h *hdfsFilesystem) MkdirAll(dir string) error {
	if err := h.client.MkdirAll(dir, 0o755); err != nil && !os.IsExist(err) {
		return errors.Wrapf(err, "failed to create directory %s", dir)
	}
	return nil
}

func (h *hdfsFilesystem) WriteFile(path string, data []byte) error {
	// HDFS files are immutable once closed. Replace means remove + create.
	if exists, err := h.Exists(path); err != nil {
		return err
	} else if exists {
		if err := h.client.Remove(path); err != nil {
			return errors.Wrapf(err, "failed to replace %s", path)
		}
	}

	w, err := h.client.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	if _, err = w.Write(data); err != nil {
		_ = w.Close()
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return errors.Wrapf(w.Close(), "failed to close %s", path)
}

func (h *hdfsFilesystem) ReadFile(path string) ([]byte, error) {
	data, err := h.client.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return data, nil
}

func (h *hdfsFilesystem) List(dir string) ([]string, error) {
	infos, err := h.client.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to list %s", dir)
	}

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name())
	}
	return names, nil
}

func (h *hdfsFilesystem) Exists(path string) (bool, error) {
	_, err := h.client.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "failed to stat %s", path)
	}
	return true, nil
}

func (h *hdfsFilesystem) Close() error {
	return h.client.Close()
}
