package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// DiagnosticPrefix starts the single line written in place of both artifacts
// when centrality is undefined.
const DiagnosticPrefix = "# centrality undefined: "

// GroupsFile is the parsed content of a group artifact.
type GroupsFile struct {
	Groups     [][]string
	Diagnostic string // Set when the artifact holds a diagnostic marker
}

// WriteGroups writes groups as a JSON array of member arrays, one group per
// line.
func WriteGroups(w io.Writer, groups [][]string) error {
	var buf bytes.Buffer
	buf.WriteString("[")
	for i, members := range groups {
		if members == nil {
			members = []string{}
		}
		line, err := json.Marshal(members)
		if err != nil {
			return fmt.Errorf("encode group %d: %w", i, err)
		}
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  ")
		buf.Write(line)
	}
	if len(groups) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("]\n")
	_, err := w.Write(buf.Bytes())
	return err
}

// DiagnosticLine formats the marker for cause on one line.
func DiagnosticLine(cause error) string {
	msg := strings.Join(strings.Fields(cause.Error()), " ")
	return DiagnosticPrefix + msg + "\n"
}

// ParseDiagnostic returns the message of a diagnostic-only artifact.
func ParseDiagnostic(data []byte) (string, bool) {
	line := strings.TrimSpace(string(data))
	if !strings.HasPrefix(line, DiagnosticPrefix) || strings.Contains(line, "\n") {
		return "", false
	}
	return strings.TrimPrefix(line, DiagnosticPrefix), true
}

// ReadGroups parses a group artifact. A zero-byte artifact and a
// diagnostic-only artifact both hold zero groups.
func ReadGroups(r io.Reader) (*GroupsFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return &GroupsFile{}, nil
	}
	if msg, ok := ParseDiagnostic(data); ok {
		return &GroupsFile{Diagnostic: msg}, nil
	}

	var groups [][]string
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("decode groups: %w", err)
	}
	return &GroupsFile{Groups: groups}, nil
}
