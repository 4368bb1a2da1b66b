package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpen_UnsupportedDriver(t *testing.T) {
	db, err := Open("mongodb", "mongodb://localhost")

	assert.Nil(t, db)
	assert.ErrorContains(t, err, `unsupported database driver "mongodb"`)
}
