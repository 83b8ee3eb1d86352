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
	"reflect"
	"sort"
	"sync"
)

var defaultRegistry = NewModelRegistry()

// SQLModel is a row model registered for table bootstrap. Instance returns a
// struct pointer compatible with Bun; Priority orders creation, lower first,
// so parent tables exist before the tables referencing them.
type SQLModel interface {
	Instance() interface{}
	Priority() int
}

type rowModel struct {
	row      interface{}
	priority int
}

func (m rowModel) Instance() interface{} { return m.row }
func (m rowModel) Priority() int         { return m.priority }

// ModelRegistry keeps one entry per row type. Registering a type again
// replaces its priority and keeps its position among equal priorities.
type ModelRegistry struct {
	mu     sync.RWMutex
	models []SQLModel
	index  map[reflect.Type]int
}

func NewModelRegistry() *ModelRegistry {
	return &ModelRegistry{index: map[reflect.Type]int{}}
}

func (r *ModelRegistry) Register(model SQLModel) {
	if model == nil || model.Instance() == nil {
		return
	}
	typ := reflect.TypeOf(model.Instance())
	r.mu.Lock()
	defer r.mu.Unlock()
	if i, ok := r.index[typ]; ok {
		r.models[i] = model
		return
	}
	r.index[typ] = len(r.models)
	r.models = append(r.models, model)
}

// Models returns the registered models by ascending priority.
func (r *ModelRegistry) Models() []SQLModel {
	r.mu.RLock()
	out := make([]SQLModel, len(r.models))
	copy(out, r.models)
	r.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority() < out[j].Priority() })
	return out
}

// Instances returns the row pointers of Models, in the same order.
func (r *ModelRegistry) Instances() []interface{} {
	models := r.Models()
	out := make([]interface{}, len(models))
	for i, m := range models {
		out[i] = m.Instance()
	}
	return out
}

// RegisterRow adds row, typically a typed nil pointer, to the default registry.
func RegisterRow(row interface{}, priority int) {
	defaultRegistry.Register(rowModel{row: row, priority: priority})
}

func GetRegisteredModels() []SQLModel {
	return defaultRegistry.Models()
}

func RegisteredModelInstances() []interface{} {
	return defaultRegistry.Instances()
}
