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

package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type parentRow struct{ ID int64 }
type childRow struct{ ID int64 }
type siblingRow struct{ ID int64 }

func TestModelRegistryOrdersByPriority(t *testing.T) {
	r := NewModelRegistry()
	r.Register(rowModel{row: (*childRow)(nil), priority: 20})
	r.Register(rowModel{row: (*parentRow)(nil), priority: 10})
	r.Register(rowModel{row: (*siblingRow)(nil), priority: 20})

	assert.Equal(t, []interface{}{(*parentRow)(nil), (*childRow)(nil), (*siblingRow)(nil)}, r.Instances())
}

func TestModelRegistryDeduplicatesByType(t *testing.T) {
	r := NewModelRegistry()
	r.Register(rowModel{row: (*childRow)(nil), priority: 5})
	r.Register(rowModel{row: (*parentRow)(nil), priority: 10})
	r.Register(rowModel{row: (*childRow)(nil), priority: 30})
	r.Register(nil)

	models := r.Models()
	assert.Len(t, models, 2)
	assert.Equal(t, (*parentRow)(nil), models[0].Instance())
	assert.Equal(t, 30, models[1].Priority())
}
