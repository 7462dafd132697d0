// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Broadside Contributors

// Package account implements the Broadside account system: user records,
// credential hashing, authentication, and cookie-backed session resolution.
package account
