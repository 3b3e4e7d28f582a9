package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestInitWithOutputWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	InitWithOutput(&buf, "debug")
	defer InitWithOutput(&bytes.Buffer{}, "info")

	WithComponent("datastore").WithField("rows", 3).Debug("parsed")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json log line, got %q", buf.String())
	}
	if entry["component"] != "datastore" || entry["msg"] != "parsed" || entry["rows"] != float64(3) {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestInitWithOutputFallsBackToInfo(t *testing.T) {
	InitWithOutput(&bytes.Buffer{}, "loud")
	if Log.GetLevel() != logrus.InfoLevel {
		t.Fatalf("expected info level, got %s", Log.GetLevel())
	}
}
