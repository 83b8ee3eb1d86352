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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "storekeeper.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "storekeeper", cfg.Database.DBName)
	assert.Equal(t, 2*time.Second, cfg.Database.SlowQueryTime)
	assert.Equal(t, "tags", cfg.Dynamo.Table)
	assert.Equal(t, 1, cfg.Ingest.Concurrency)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
database:
  type: postgres
  host: db.local
  port: 5432
  username: app
  password: secret
  dbname: shop
  slow_query_time: 500ms
dynamo:
  region: eu-west-1
  table: store-tags
ingest:
  concurrency: 4
log:
  level: debug
  format: json
`)
	t.Setenv("STOREKEEPER_DATABASE_HOST", "db.override")
	t.Setenv("STOREKEEPER_INGEST_DRY_RUN", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "db.override", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 500*time.Millisecond, cfg.Database.SlowQueryTime)
	// keys absent from the file keep their defaults
	assert.Equal(t, 100, cfg.Database.MaxOpenConns)
	assert.Equal(t, "eu-west-1", cfg.Dynamo.Region)
	assert.Equal(t, 4, cfg.Ingest.Concurrency)
	assert.True(t, cfg.Ingest.DryRun)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"database type": "database:\n  type: oracle\n",
		"concurrency":   "ingest:\n  concurrency: 0\n",
		"log format":    "log:\n  format: xml\n",
		"half a key":    "dynamo:\n  access_key: AKIA\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			require.Error(t, err)
			var verrs validator.ValidationErrors
			assert.ErrorAs(t, err, &verrs)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDumpMasksCredentials(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Database.Password = "hunter2"
	cfg.Dynamo.AccessKey = "AKIA"
	cfg.Dynamo.SecretKey = "shh"

	out, err := Dump(cfg)
	require.NoError(t, err)
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "shh")
	assert.Equal(t, "hunter2", cfg.Database.Password, "caller's config is untouched")

	var back Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &back))
	assert.Equal(t, redacted, back.Database.Password)
	assert.Equal(t, redacted, back.Dynamo.SecretKey)
	assert.Equal(t, cfg.Database.DBName, back.Database.DBName)
}
