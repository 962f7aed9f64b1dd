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

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

type aferoFilesystem struct {
	name string
	fs   afero.Fs
}

// NewLocal returns a filesystem rooted at dir on the local disk, mirroring
// the same absolute path scheme as the distributed backend. This is the
// degraded-mode fallback store.
func NewLocal(root string) (Filesystem, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create local storage root %s", root)
	}
	return &aferoFilesystem{
		name: "local",
		fs:   afero.NewBasePathFs(afero.NewOsFs(), root),
	}, nil
}

// NewMemory returns an in-memory filesystem, used in tests.
func NewMemory() Filesystem {
	return &aferoFilesystem{
		name: "memory",
		fs:   afero.NewMemMapFs(),
	}
}

func (a *aferoFilesystem) Name() string {
	return a.name
}

func (a *aferoFilesystem) MkdirAll(dir string) error {
	return errors.Wrapf(a.fs.MkdirAll(dir, 0o755), "failed to create directory %s", dir)
}

func (a *aferoFilesystem) WriteFile(path string, data []byte) error {
	return errors.Wrapf(afero.WriteFile(a.fs, path, data, 0o644), "failed to write %s", path)
}

func (a *aferoFilesystem) ReadFile(path string) ([]byte, error) {
	data, err := afero.ReadFile(a.fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return data, nil
}

func (a *aferoFilesystem) List(dir string) ([]string, error) {
	infos, err := afero.ReadDir(a.fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to list %s", dir)
	}

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		if !info.IsDir() {
			names = append(names, info.Name())
		}
	}
	return names, nil
}

func (a *aferoFilesystem) Exists(path string) (bool, error) {
	exists, err := afero.Exists(a.fs, path)
	return exists, errors.Wrapf(err, "failed to stat %s", path)
}

func (*aferoFilesystem) Close() error {
	return nil
}
