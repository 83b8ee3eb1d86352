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
	"slices"
)

// Role is the closed set of back-office roles.
type Role int

const (
	RoleSuper Role = iota
	RoleManager
	RoleStaff
)

// Menu identifies a back-office navigation entry.
type Menu string

const (
	MenuDashboard Menu = "dashboard"
	MenuStores    Menu = "stores"
	MenuDevices   Menu = "devices"
	MenuTags      Menu = "tags"
	MenuAdmins    Menu = "admins"
	MenuPayments  Menu = "payments"
)

// Permission is a single grant checked by the service layer.
type Permission string

const (
	PermStoreRead    Permission = "store:read"
	PermStoreWrite   Permission = "store:write"
	PermDeviceRead   Permission = "device:read"
	PermDeviceWrite  Permission = "device:write"
	PermTagImport    Permission = "tag:import"
	PermAdminManage  Permission = "admin:manage"
	PermPaymentRead  Permission = "payment:read"
	PermPaymentWrite Permission = "payment:write"
)

type roleGrant struct {
	name        string
	desc        string
	menus       []Menu
	permissions []Permission
}

var roleTable = map[Role]roleGrant{
	RoleSuper: {
		name:  "SUPER",
		desc:  "super administrator",
		menus: []Menu{MenuDashboard, MenuStores, MenuDevices, MenuTags, MenuAdmins, MenuPayments},
		permissions: []Permission{
			PermStoreRead, PermStoreWrite, PermDeviceRead, PermDeviceWrite,
			PermTagImport, PermAdminManage, PermPaymentRead, PermPaymentWrite,
		},
	},
	RoleManager: {
		name:  "MANAGER",
		desc:  "store manager",
		menus: []Menu{MenuDashboard, MenuStores, MenuDevices, MenuTags, MenuPayments},
		permissions: []Permission{
			PermStoreRead, PermStoreWrite, PermDeviceRead, PermDeviceWrite,
			PermTagImport, PermPaymentRead,
		},
	},
	RoleStaff: {
		name:        "STAFF",
		desc:        "store staff",
		menus:       []Menu{MenuDashboard, MenuDevices, MenuTags},
		permissions: []Permission{PermStoreRead, PermDeviceRead},
	},
}

var _ BaseEnum = RoleStaff

// ParseRole resolves a role by name, case-insensitive.
func ParseRole(name string) (Role, bool) {
	if r, ok := LookupEnum(name, Roles()...); ok {
		return r, true
	}
	return Role(IllegalValue), false
}

// Roles returns every role in declaration order.
func Roles() []Role {
	return []Role{RoleSuper, RoleManager, RoleStaff}
}

func (r Role) IsValid() bool {
	_, ok := roleTable[r]
	return ok
}

func (r Role) Number() int {
	if !r.IsValid() {
		return IllegalValue
	}
	return int(r)
}

func (r Role) Name() string {
	if g, ok := roleTable[r]; ok {
		return g.name
	}
	return IllegalName
}

func (r Role) String() string { return r.Name() }

func (r Role) Desc() string {
	if g, ok := roleTable[r]; ok {
		return g.desc
	}
	return IllegalDesc
}

// Menus returns a copy of the menus visible to the role.
func (r Role) Menus() []Menu {
	return slices.Clone(roleTable[r].menus)
}

// Permissions returns a copy of the role's grants.
func (r Role) Permissions() []Permission {
	return slices.Clone(roleTable[r].permissions)
}

func (r Role) Can(p Permission) bool {
	return slices.Contains(roleTable[r].permissions, p)
}
