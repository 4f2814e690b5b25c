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

type AddrConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

type LogConfig struct {
	LogLevel string `yaml:"log_level"`
}

type AuthConfig struct {
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
}

type DataSourceConfig struct {
	Hostname string `yaml:"hostname"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	Database int    `yaml:"database"`
}

// ConsentConfig controls the local consent cache.
type ConsentConfig struct {
	StorageDir      string `yaml:"storage_dir"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
}

// PrivacyConfig controls the data export/deletion workflows.
type PrivacyConfig struct {
	ExportDir string `yaml:"export_dir"`
}

// RetryConfig bounds retries of compliance-critical remote calls.
type RetryConfig struct {
	MaxRetries            uint `yaml:"max_retries"`
	InitialIntervalMillis int  `yaml:"initial_interval_millis"`
	MaxIntervalMillis     int  `yaml:"max_interval_millis"`
	MaxElapsedTimeSeconds int  `yaml:"max_elapsed_time_seconds"`
}

type Config struct {
	Addr       AddrConfig       `yaml:"addr"`
	Log        LogConfig        `yaml:"log"`
	Auth       AuthConfig       `yaml:"auth"`
	DataSource DataSourceConfig `yaml:"datasource"`
	Redis      RedisConfig      `yaml:"redis"`
	Consent    ConsentConfig    `yaml:"consent"`
	Privacy    PrivacyConfig    `yaml:"privacy"`
	Retry      RetryConfig      `yaml:"retry"`
}
