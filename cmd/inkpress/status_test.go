// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpress Contributors

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSchemaStatus(t *testing.T) {
	t.Run("empty schema", func(t *testing.T) {
		out := formatSchemaStatus(SchemaStatus{Version: 0, Pending: []uint{1}})
		assert.Contains(t, out, "empty")
		assert.Contains(t, out, "Pending: 1 migration(s): 000001")
	})

	t.Run("up to date", func(t *testing.T) {
		out := formatSchemaStatus(SchemaStatus{Version: 1, Name: "000001_initial"})
		assert.Contains(t, out, "version 1 (000001_initial)")
		assert.Contains(t, out, "Pending: none")
	})

	t.Run("dirty schema warns", func(t *testing.T) {
		out := formatSchemaStatus(SchemaStatus{Version: 1, Dirty: true})
		assert.Contains(t, out, "dirty")
		assert.Contains(t, out, "--force")
	})
}

func TestStatusCmd_JSONFlag(t *testing.T) {
	cmd := newStatusCmd()
	assert.NotNil(t, cmd.Flags().Lookup("json"))
}
