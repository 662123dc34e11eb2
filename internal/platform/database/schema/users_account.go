// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns of the relational store.
// SQL in the repositories is built from these names so a column rename is a one-line change.
package schema

import "github.com/taibuivan/yomira-identity/internal/platform/constants"

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table        string
	ID           string
	Username     string
	Email        string
	Password     string
	RefreshToken string
	CreatedAt    string
	UpdatedAt    string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:        constants.SchemaUsers + ".account",
	ID:           "id",
	Username:     "username",
	Email:        "email",
	Password:     "passwordhash",
	RefreshToken: "refreshtoken",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
}

// Columns returns every column in the order repositories scan them.
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Username, t.Email, t.Password, t.RefreshToken, t.CreatedAt, t.UpdatedAt,
	}
}
