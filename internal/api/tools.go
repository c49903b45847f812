package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

type textResponse struct {
	OK   bool   `json:"ok"`
	Text string `json:"text"`
}

func (s *Server) handleRowsToText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rows json.RawMessage `json:"rows"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_input")
		return
	}

	text, ok := rowsToText(req.Rows)
	if !ok {
		writeError(w, http.StatusBadRequest, "rows_must_be_array")
		return
	}
	writeJSON(w, http.StatusOK, textResponse{OK: true, Text: text})
}

func (s *Server) handlePretty(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil || !json.Valid(body) {
		writeError(w, http.StatusBadRequest, "bad_input")
		return
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(body), "", "  "); err != nil {
		writeError(w, http.StatusBadRequest, "bad_input")
		return
	}
	writeJSON(w, http.StatusOK, textResponse{OK: true, Text: buf.String()})
}

// rowsToText renders a JSON array as lines. Array rows become
// tab-separated cells.
func rowsToText(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return "", false
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return "", false
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		var cells []json.RawMessage
		if t := bytes.TrimSpace(row); len(t) > 0 && t[0] == '[' && json.Unmarshal(t, &cells) == nil {
			parts := make([]string, len(cells))
			for i, c := range cells {
				parts[i] = renderCell(c)
			}
			lines = append(lines, strings.Join(parts, "\t"))
			continue
		}
		lines = append(lines, renderCell(row))
	}
	return strings.Join(lines, "\n"), true
}

func renderCell(raw json.RawMessage) string {
	t := bytes.TrimSpace(raw)
	switch {
	case len(t) == 0, bytes.Equal(t, []byte("null")):
		return ""
	case t[0] == '"':
		var s string
		if err := json.Unmarshal(t, &s); err == nil {
			return s
		}
	case t[0] == '{' || t[0] == '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, t); err == nil {
			return buf.String()
		}
	}
	return string(t)
}
