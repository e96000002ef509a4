package svcmap_test

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"
)

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(b)
}

func strReader(s string) io.Reader {
	return strings.NewReader(s)
}
