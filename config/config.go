/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/tomoncle/storekeeper/database"
	"github.com/tomoncle/storekeeper/ingest"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. STOREKEEPER_DATABASE_HOST.
const EnvPrefix = "STOREKEEPER"

const redacted = "******"

type Config struct {
	Database database.ConnectionConfig `mapstructure:"database" yaml:"database"`
	Dynamo   ingest.DynamoConfig       `mapstructure:"dynamo" yaml:"dynamo"`
	Ingest   IngestConfig              `mapstructure:"ingest" yaml:"ingest"`
	Log      LogConfig                 `mapstructure:"log" yaml:"log"`
}

// IngestConfig tunes the tag import.
type IngestConfig struct {
	File        string `mapstructure:"file" yaml:"file"`
	Concurrency int    `mapstructure:"concurrency" yaml:"concurrency" validate:"gte=1,lte=64"`
	DryRun      bool   `mapstructure:"dry_run" yaml:"dry_run"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=trace debug info warn warning error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
}

// Load reads the YAML file at path, applies STOREKEEPER_* environment
// overrides on top of the defaults and validates the result. An empty path
// loads defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Dump renders cfg as YAML with credentials masked.
func Dump(cfg *Config) (string, error) {
	if cfg == nil {
		return "", errors.New("config is nil")
	}
	c := *cfg
	c.Database.Password = mask(c.Database.Password)
	c.Dynamo.AccessKey = mask(c.Dynamo.AccessKey)
	c.Dynamo.SecretKey = mask(c.Dynamo.SecretKey)
	out, err := yaml.Marshal(&c)
	if err != nil {
		return "", fmt.Errorf("failed to render config: %w", err)
	}
	return string(out), nil
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return redacted
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	db := database.DefaultConnectionConfig()
	v.SetDefault("database.type", db.Type)
	v.SetDefault("database.host", db.Host)
	v.SetDefault("database.port", db.Port)
	v.SetDefault("database.username", db.Username)
	v.SetDefault("database.password", db.Password)
	v.SetDefault("database.dbname", db.DBName)
	v.SetDefault("database.sslmode", db.SSLMode)
	v.SetDefault("database.max_idle_conns", db.MaxIdleConns)
	v.SetDefault("database.max_open_conns", db.MaxOpenConns)
	v.SetDefault("database.conn_max_lifetime", db.ConnMaxLifetime)
	v.SetDefault("database.conn_max_idle_time", db.ConnMaxIdleTime)
	v.SetDefault("database.connect_timeout", db.ConnectTimeout)
	v.SetDefault("database.read_timeout", db.ReadTimeout)
	v.SetDefault("database.write_timeout", db.WriteTimeout)
	v.SetDefault("database.enable_query_log", db.EnableQueryLog)
	v.SetDefault("database.slow_query_time", db.SlowQueryTime)
	v.SetDefault("database.auto_create", db.AutoCreate)

	v.SetDefault("dynamo.region", "us-east-1")
	v.SetDefault("dynamo.table", "tags")
	v.SetDefault("dynamo.endpoint", "")
	v.SetDefault("dynamo.access_key", "")
	v.SetDefault("dynamo.secret_key", "")

	v.SetDefault("ingest.file", "")
	v.SetDefault("ingest.concurrency", 1)
	v.SetDefault("ingest.dry_run", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
