package server

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/coreman2200/gridzilla/internal/names"
)

// ServeNames enables the name list routes. Additions need password; with
// an empty password nobody can add names.
func (s *Server) ServeNames(l *names.List, password string) {
	s.mu.Lock()
	s.names, s.namesPassword = l, password
	s.mu.Unlock()
}

func (s *Server) nameList() (*names.List, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.names, s.namesPassword
}

func nameReply(w http.ResponseWriter, code int, status, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status, "message": message, "source": "names"})
}

// HandleAddName puts a name on the additional list.
func (s *Server) HandleAddName(w http.ResponseWriter, r *http.Request) {
	list, password := s.nameList()
	if list == nil {
		nameReply(w, http.StatusNotFound, "Error", "name lists are not in use")
		return
	}
	var req struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		nameReply(w, http.StatusBadRequest, "Error", "missing name")
		return
	}
	if list.Valid(req.Name) {
		nameReply(w, http.StatusOK, "OK", fmt.Sprintf("The name %s is already in the name list", req.Name))
		return
	}
	if password == "" || subtle.ConstantTimeCompare([]byte(req.Password), []byte(password)) != 1 {
		nameReply(w, http.StatusForbidden, "Error", "You must provide the correct password to add a name.")
		return
	}
	if _, err := list.Add(req.Name); err != nil {
		s.log.Error().Err(err).Str("name", req.Name).Msg("add name")
		nameReply(w, http.StatusInternalServerError, "Error", "the name could not be saved")
		return
	}
	nameReply(w, http.StatusOK, "OK", fmt.Sprintf("Name added: %s", req.Name))
}

// HandleCheckName reports whether every name in the path is known.
func (s *Server) HandleCheckName(w http.ResponseWriter, r *http.Request) {
	list, _ := s.nameList()
	if list == nil {
		nameReply(w, http.StatusNotFound, "Error", "name lists are not in use")
		return
	}
	name := r.PathValue("name")
	if !list.Valid(name) {
		nameReply(w, http.StatusOK, "Error", fmt.Sprintf("We do not recognize the name %s.", name))
		return
	}
	nameReply(w, http.StatusOK, "OK", fmt.Sprintf("The name %s is a recognized name.", name))
}
