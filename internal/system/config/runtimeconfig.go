/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package config

import "sync"

// CPSRuntime holds the runtime configuration for the consent privacy server.
type CPSRuntime struct {
	CPSHome string `yaml:"cps_home"`
	Config  Config `yaml:"config"`
}

var (
	runtimeConfig *CPSRuntime
	once          sync.Once
)

// InitializeCPSRuntime initializes the CPSRuntime configuration.
func InitializeCPSRuntime(cpsHome string, config *Config) error {

	once.Do(func() {
		runtimeConfig = &CPSRuntime{
			CPSHome: cpsHome,
			Config:  *config,
		}
	})

	return nil
}

// GetCPSRuntime returns the CPSRuntime configuration.
func GetCPSRuntime() *CPSRuntime {

	if runtimeConfig == nil {
		panic("CPSRuntime is not initialized")
	}
	return runtimeConfig
}
