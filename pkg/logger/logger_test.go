package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerLevelAndFormat(t *testing.T) {
	l := NewLogger("debug", "json")
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, l.Formatter)

	l = NewLogger("nonsense", "text")
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, l.Formatter)
}

func TestJSONOutputCarriesFields(t *testing.T) {
	l := NewLogger("info", "json")
	var buf bytes.Buffer
	l.SetOutput(&buf)

	l.WithFields(logrus.Fields{"discussion_id": 7}).Info("Discussion created successfully")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "Discussion created successfully", line["msg"])
	assert.EqualValues(t, 7, line["discussion_id"])
}
