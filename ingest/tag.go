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
	"strings"
)

// RegDateLayout is the layout of the regDate attribute.
const RegDateLayout = "2006-01-02T15:04:05.000"

type TagStatus string

const (
	TagReady   TagStatus = "READY"
	TagBound   TagStatus = "BOUND"
	TagRetired TagStatus = "RETIRED"
)

// Tag is one item written to the tag table.
type Tag struct {
	UID      string    `dynamodbav:"uid" json:"uid"`
	TagID    string    `dynamodbav:"tagId" json:"tagId"`
	TagName  string    `dynamodbav:"tagName" json:"tagName"`
	StoreID  *string   `dynamodbav:"storeId" json:"storeId"`
	DeviceID *string   `dynamodbav:"deviceId" json:"deviceId"`
	RegDate  string    `dynamodbav:"regDate" json:"regDate"`
	Status   TagStatus `dynamodbav:"status" json:"status"`
}

// Record is one loosely typed source row. Line is its 1-based line in the
// source file.
type Record struct {
	Line      int    `json:"line"`
	TagID     string `json:"tagId"`
	TagName   string `json:"tagName,omitempty"`
	StoreRef  string `json:"storeId,omitempty"`
	DeviceRef string `json:"deviceId,omitempty"`
}

// Valid reports whether the record can become a tag.
func (r Record) Valid() bool {
	return strings.TrimSpace(r.TagID) != ""
}

// MapRecord builds the tag for r. Empty store and device references become
// NULL attributes. ok is false for records without a tag id.
func MapRecord(r Record, uid, regDate string) (tag Tag, ok bool) {
	if !r.Valid() {
		return Tag{}, false
	}
	return Tag{
		UID:      uid,
		TagID:    strings.TrimSpace(r.TagID),
		TagName:  strings.TrimSpace(r.TagName),
		StoreID:  optional(r.StoreRef),
		DeviceID: optional(r.DeviceRef),
		RegDate:  regDate,
		Status:   TagReady,
	}, true
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
