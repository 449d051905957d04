package commands

import (
	"bytes"
	"encoding/base64"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCreateIndexKey(t *testing.T) {
	pattern := regexp.MustCompile(`DEV_KMS_IDX_KEY="([^"]+)"`)

	var first, second bytes.Buffer
	require.NoError(t, RunCreateIndexKey(&first))
	require.NoError(t, RunCreateIndexKey(&second))

	match := pattern.FindStringSubmatch(first.String())
	require.Len(t, match, 2)
	key, err := base64.StdEncoding.DecodeString(match[1])
	require.NoError(t, err)
	assert.Len(t, key, 32)

	assert.NotEqual(t, first.String(), second.String())
}
