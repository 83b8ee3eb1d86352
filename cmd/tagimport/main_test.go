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

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/storekeeper/ingest"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDryRunImport(t *testing.T) {
	var b strings.Builder
	b.WriteString("tag_id,tag_name,store_id\n")
	for i := 0; i < 30; i++ {
		b.WriteString("T,name,S\n")
	}
	b.WriteString(",orphan,S\n")
	csvPath := writeFile(t, "tags.csv", b.String())

	out, err := execute(t, "--file", csvPath, "--dry-run", "--concurrency", "2")
	require.NoError(t, err)

	var report ingest.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 31, report.Records)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, []int{32}, report.SkippedLines)
	assert.Equal(t, 2, report.Requests)
	assert.Equal(t, 30, report.Written)
}

func TestImportRequiresFile(t *testing.T) {
	_, err := execute(t, "--dry-run")
	assert.ErrorContains(t, err, "no input file")
}

func TestExplicitEnvFileMustExist(t *testing.T) {
	_, err := execute(t, "--env-file", filepath.Join(t.TempDir(), "missing.env"), "--print-config")
	assert.Error(t, err)
}

func TestPrintConfigUsesEnvFile(t *testing.T) {
	envPath := writeFile(t, "test.env", "STOREKEEPER_DYNAMO_TABLE=from-dotenv\nSTOREKEEPER_DATABASE_PASSWORD=hunter2\n")
	t.Setenv("STOREKEEPER_DYNAMO_TABLE", "")
	os.Unsetenv("STOREKEEPER_DYNAMO_TABLE")
	t.Setenv("STOREKEEPER_DATABASE_PASSWORD", "")
	os.Unsetenv("STOREKEEPER_DATABASE_PASSWORD")

	out, err := execute(t, "--env-file", envPath, "--print-config")
	require.NoError(t, err)
	assert.Contains(t, out, "table: from-dotenv")
	assert.NotContains(t, out, "hunter2")
}
