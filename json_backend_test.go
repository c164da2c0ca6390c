package stout

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFileBackendProducesLineDelimitedObjects(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stout.jsonl")
	backend := JSONFileBackend(path)

	require.NoError(t, backend(sampleSnapshot()))
	require.NoError(t, backend(sampleSnapshot()))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)

	// The file is a sequence of top-level objects, not a single JSON
	// array (§9 Open Question 4) — so decoding it as one array must fail,
	// while decoding it as a stream of objects must succeed.
	var asArray []interface{}
	assert.Error(t, json.Unmarshal(contents, &asArray))

	dec := json.NewDecoder(strings.NewReader(string(contents)))
	count := 0
	for dec.More() {
		var obj map[string]interface{}
		require.NoError(t, dec.Decode(&obj))
		assert.Contains(t, obj, "_timestamp")
		assert.Contains(t, obj, "requests")
		assert.Contains(t, obj, "queue")
		assert.Contains(t, obj, "latency")
		count++
	}
	assert.Equal(t, 2, count)
}

func TestQuoteJSONEscaping(t *testing.T) {
	assert.Equal(t, "\"hello\"", quoteJSON("hello"))
	assert.Equal(t, "\"a\\\"b\"", quoteJSON("a\"b"))
	assert.Equal(t, "\"a\\\\b\"", quoteJSON("a\\b"))
	assert.Equal(t, "\"a\\nb\"", quoteJSON("a\nb"))
	assert.Equal(t, "\"a\\u0001b\"", quoteJSON("a\x01b"))
}

func TestFormatJSONFloat(t *testing.T) {
	assert.Equal(t, "1.0", formatJSONFloat(1.0))
	assert.Equal(t, "1.5", formatJSONFloat(1.5))
	assert.Equal(t, "0.0", formatJSONFloat(0.0))
	assert.Equal(t, "-2.25", formatJSONFloat(-2.25))

	for _, s := range []string{
		formatJSONFloat(1.0),
		formatJSONFloat(1.5),
		formatJSONFloat(123.456),
	} {
		assert.True(t, strings.Contains(s, "."), "must contain exactly one decimal point: %q", s)
		assert.Equal(t, 1, strings.Count(s, "."))
		last := s[len(s)-1]
		assert.True(t, last >= '0' && last <= '9', "must end in a digit: %q", s)
	}
}
