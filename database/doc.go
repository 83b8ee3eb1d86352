// Package database provides connection management, transaction scopes,
// statement logging hooks, SQL error classification, table bootstrap and
// configuration types built on top of Bun.
package database
