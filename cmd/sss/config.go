// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	glog "github.com/golang/glog"
	"sigs.k8s.io/yaml"
)

// The default name for the configuration file.
const defaultConfigName string = "sss.yaml"

// config holds defaults for the split command.
type config struct {
	Threshold int `json:"threshold"`
	Shares    int `json:"shares"`
}

func defaultConfigPath() string {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		glog.Errorf("Failed to get config directory location: %v", err.Error())
		return defaultConfigName
	}
	return filepath.Join(cfgDir, defaultConfigName)
}

// loadConfig reads the YAML configuration at path. A missing file yields an
// empty configuration.
func loadConfig(path string) (config, error) {
	var cfg config
	yamlBytes, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		glog.V(1).Infof("No config file at %v, using flags only", path)
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %v", err)
	}
	if err := yaml.UnmarshalStrict(yamlBytes, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal config file %v: %v", path, err)
	}
	return cfg, nil
}

// resolve returns the threshold and number of shares, preferring explicitly
// set flags (non-zero) over the configuration file.
func (c config) resolve(threshold, shares int) (int, int, error) {
	if threshold == 0 {
		threshold = c.Threshold
	}
	if shares == 0 {
		shares = c.Shares
	}
	if threshold == 0 || shares == 0 {
		return 0, 0, fmt.Errorf("threshold and shares must be set by flag or config file, got threshold %d, shares %d", threshold, shares)
	}
	return threshold, shares, nil
}
