// Copyright 2026 Matthias Theiner
// Licensed under the EUPL-1.2

// Package models holds the persistent entities of the account backend:
// accounts, their addresses, and the verification tokens issued against them.
package models
