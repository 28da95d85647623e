package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplicaDialectorsSkipsEmpty(t *testing.T) {
	got := replicaDialectors([]string{"", "u:p@tcp(r1:3306)/db", ""})
	assert.Len(t, got, 1)
	assert.Empty(t, replicaDialectors(nil))
}
