package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Table(&buf, []string{"Name", "Distance"}, [][]string{{"Morning Ride", "42.23"}}, true))

	out := buf.String()
	assert.Contains(t, out, "Name")
	assert.Contains(t, out, "Morning Ride")
	assert.Contains(t, out, "42.23")
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, map[string]int{"count": 2}))
	assert.Equal(t, "{\n  \"count\": 2\n}\n", buf.String())
}
