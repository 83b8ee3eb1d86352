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

package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tomoncle/storekeeper/errs"
)

var headerAliases = map[string]string{
	"tag_id":    "tag_id",
	"tagid":     "tag_id",
	"tag_name":  "tag_name",
	"tagname":   "tag_name",
	"store_id":  "store_id",
	"storeid":   "store_id",
	"device_id": "device_id",
	"deviceid":  "device_id",
}

// CSVReader reads header-mapped tag records. Column order is free; unknown
// columns are ignored and tag_id is required.
type CSVReader struct {
	r      *csv.Reader
	column map[string]int
}

func NewCSVReader(r io.Reader) (*CSVReader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errs.NewInvalidArgumentError("csv", "missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	column := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if canonical, ok := headerAliases[key]; ok {
			column[canonical] = i
		}
	}
	if _, ok := column["tag_id"]; !ok {
		return nil, errs.NewInvalidArgumentError("csv", "header has no tag_id column")
	}
	return &CSVReader{r: cr, column: column}, nil
}

// Next returns the next record or io.EOF.
func (c *CSVReader) Next() (Record, error) {
	fields, err := c.r.Read()
	if err != nil {
		return Record{}, err
	}
	line, _ := c.r.FieldPos(0)
	get := func(name string) string {
		i, ok := c.column[name]
		if !ok || i >= len(fields) {
			return ""
		}
		return fields[i]
	}
	return Record{
		Line:      line,
		TagID:     get("tag_id"),
		TagName:   get("tag_name"),
		StoreRef:  get("store_id"),
		DeviceRef: get("device_id"),
	}, nil
}

// ReadAll reads every record from r.
func ReadAll(r io.Reader) ([]Record, error) {
	cr, err := NewCSVReader(r)
	if err != nil {
		return nil, err
	}
	var out []Record
	for {
		rec, err := cr.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("read csv record: %w", err)
		}
		out = append(out, rec)
	}
}
