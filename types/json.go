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

package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JsonObject maps a text column holding a JSON object.
type JsonObject map[string]interface{}

// Value implements driver.Valuer. The document is sent as a string so that it
// lands in text columns on every dialect.
func (j JsonObject) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner. NULL scans to an empty object.
func (j *JsonObject) Scan(value interface{}) error {
	var b []byte
	switch v := value.(type) {
	case nil:
		*j = make(JsonObject)
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JsonObject", value)
	}
	if len(b) == 0 {
		*j = make(JsonObject)
		return nil
	}
	return json.Unmarshal(b, j)
}

// String returns the value stored under key, or "" when absent or not a string.
func (j JsonObject) String(key string) string {
	if s, ok := j[key].(string); ok {
		return s
	}
	return ""
}
