package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCommaList(t *testing.T) {
	assert.Nil(t, splitCommaList(""))
	assert.Equal(t, []string{"get_balance"}, splitCommaList("get_balance"))
	assert.Equal(
		t,
		[]string{"https://a.example.com/cb", "https://b.example.com/cb"},
		splitCommaList(" https://a.example.com/cb , https://b.example.com/cb ,"),
	)
}

func TestOutputClientText(t *testing.T) {
	var buf bytes.Buffer
	outputClientText("consumer-id", "s3cret", &buf)

	output := buf.String()
	assert.Contains(t, output, "consumer-id")
	assert.Contains(t, output, "s3cret")
	assert.Contains(t, output, "shown only once")
}

func TestOutputClientJSON(t *testing.T) {
	var buf bytes.Buffer
	outputClientJSON("consumer-id", "s3cret", &buf)

	var result map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, "consumer-id", result["client_id"])
	assert.Equal(t, "s3cret", result["secret"])
}
