// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpress Contributors

// Package auth provides credential primitives for Inkpress: account records,
// password hashing, bearer-token issuing and verification, and the password
// reset lifecycle.
//
// # Domain Types
//
// Account values should be created through NewAccount, which validates the
// username and password hash. Direct struct initialization bypasses
// validation and may create invalid state.
//
// # Services
//
// Service types coordinate domain operations:
//   - Service - registration, login, authenticated password change
//   - PasswordResetService - the reset-token lifecycle
//   - TokenManager - bearer token issue/verify
//
// Reset-token state lives on the account row: the token hash and its expiry
// are always set and cleared together, and the verified flag is only
// meaningful while an unexpired hash is present.
package auth
