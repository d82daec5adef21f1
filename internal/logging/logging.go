// Package logging writes one JSON object per line through the standard
// logger.
package logging

import (
	"encoding/json"
	"log"
	"time"
)

type Fields map[string]any

func output(level, msg string, fields Fields) {
	out := make(Fields, len(fields)+3)
	for k, v := range fields {
		out[k] = v
	}
	out["level"] = level
	out["ts"] = time.Now().UTC().Format(time.RFC3339)
	out["msg"] = msg
	b, err := json.Marshal(out)
	if err != nil {
		log.Printf("%s: %s (%v)\n", level, msg, fields)
		return
	}
	log.Println(string(b))
}

// Info logs an informational message with optional fields.
func Info(msg string, fields Fields) {
	output("info", msg, fields)
}

// Warn logs something that was recovered from but deserves attention.
func Warn(msg string, fields Fields) {
	output("warn", msg, fields)
}

// Error logs an error message and includes the error text in the fields.
func Error(msg string, err error, fields Fields) {
	output("error", msg, withErr(fields, err))
}

func withErr(fields Fields, err error) Fields {
	if err == nil {
		return fields
	}
	out := make(Fields, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["error"] = err.Error()
	return out
}
