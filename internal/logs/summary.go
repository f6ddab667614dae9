package logs

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// promoted keys are rendered in the summary prefix rather than as trailing fields.
var promoted = map[string]bool{
	"ts": true, "level": true, "msg": true, "component": true,
	"chapter": true, "stage": true, "run_id": true, "collection": true,
}

// Summarize condenses one JSON log record into
// "ts LEVEL [component] chapter/stage: msg key=value ...". Lines that are not
// JSON objects are returned unchanged.
func Summarize(line string) string {
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		return line
	}

	var b strings.Builder
	if ts, ok := record["ts"].(string); ok {
		b.WriteString(ts)
		b.WriteByte(' ')
	}
	if level, ok := record["level"].(string); ok {
		fmt.Fprintf(&b, "%-5s ", strings.ToUpper(level))
	}
	if component, ok := record["component"].(string); ok && component != "" {
		fmt.Fprintf(&b, "[%s] ", component)
	}
	subject := joinNonEmpty("/", stringField(record, "chapter"), stringField(record, "stage"))
	if subject != "" {
		b.WriteString(subject)
		b.WriteString(": ")
	}
	b.WriteString(stringField(record, "msg"))

	keys := make([]string, 0, len(record))
	for key := range record {
		if !promoted[key] {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, " %s=%v", key, record[key])
	}
	return b.String()
}

// Matches reports whether a JSON record belongs to chapter key. Non-JSON
// lines never match a non-empty key.
func Matches(line, chapter string) bool {
	if chapter == "" {
		return true
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		return false
	}
	return stringField(record, "chapter") == chapter
}

func stringField(record map[string]any, key string) string {
	if value, ok := record[key].(string); ok {
		return value
	}
	return ""
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0]
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, sep)
}
