package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"nocartorio/jsonrules/pkg/datatree"
	ruleerrors "nocartorio/jsonrules/pkg/rules/errors"
	"nocartorio/jsonrules/pkg/telemetry/logging"
)

// ValidateResponse is the body of a validate call.
type ValidateResponse struct {
	OK      bool                `json:"ok"`
	RunID   string              `json:"run_id"`
	Ruleset string              `json:"ruleset"`
	Version string              `json:"version,omitempty"`
	Errors  []ruleerrors.Record `json:"errors"`
}

// RulesetInfo describes one served ruleset.
type RulesetInfo struct {
	Name      string   `json:"name"`
	Root      string   `json:"root"`
	Version   string   `json:"version"`
	Documents []string `json:"documents"`
}

// ErrorResponse is the body of every non-validation failure.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	v, ok := s.validators[name]
	if !ok {
		s.writeError(w, r, http.StatusNotFound, "ruleset '"+name+"' not found")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.Server.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		s.writeError(w, r, http.StatusBadRequest, "failed to read request body")
		return
	}

	data, err := datatree.Decode(body, requestFormat(r))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx := logging.WithRuleset(r.Context(), name)
	result := v.Check(ctx, data)

	resp := ValidateResponse{
		OK:      result.OK,
		RunID:   result.RunID,
		Ruleset: name,
		Version: result.Version,
		Errors:  result.Errors,
	}
	if resp.Errors == nil {
		resp.Errors = []ruleerrors.Record{}
	}

	code := http.StatusOK
	if !result.OK {
		code = http.StatusUnprocessableEntity
	}
	writeJSON(w, code, resp)
}

func (s *Server) handleListRulesets(w http.ResponseWriter, r *http.Request) {
	infos := make([]RulesetInfo, 0, len(s.validators))
	for _, name := range s.Rulesets() {
		infos = append(infos, s.rulesetInfo(name))
	}
	writeJSON(w, http.StatusOK, map[string]any{"rulesets": infos})
}

func (s *Server) handleGetRuleset(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if _, ok := s.validators[name]; !ok {
		s.writeError(w, r, http.StatusNotFound, "ruleset '"+name+"' not found")
		return
	}
	writeJSON(w, http.StatusOK, s.rulesetInfo(name))
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	v, ok := s.validators[name]
	if !ok {
		s.writeError(w, r, http.StatusNotFound, "ruleset '"+name+"' not found")
		return
	}
	if err := v.Reload(); err != nil {
		s.writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.rulesetInfo(name))
}

func (s *Server) rulesetInfo(name string) RulesetInfo {
	st := s.validators[name].Store()
	return RulesetInfo{
		Name:      name,
		Root:      st.RootName(),
		Version:   st.Version(),
		Documents: st.Names(),
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	writeJSON(w, code, ErrorResponse{
		Error:     msg,
		RequestID: logging.GetRequestID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// requestFormat returns "yaml" for YAML request bodies, "json" otherwise.
func requestFormat(r *http.Request) string {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return "json"
	}
	switch mediaType {
	case "application/yaml", "application/x-yaml", "text/yaml":
		return "yaml"
	default:
		return "json"
	}
}
