package server

import (
	"net/http"

	"groupify/internal/models"
)

type createGroupRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

type groupPayload struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

func toGroupPayload(g *models.Group) groupPayload {
	members := g.Members
	if members == nil {
		members = []string{}
	}
	return groupPayload{ID: g.ID, Name: g.Name, Members: members}
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	group, err := s.groups.CreateGroup(r.Context(), req.Name, req.Members)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, toGroupPayload(group))
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := s.groups.GetGroup(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toGroupPayload(group))
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.groups.ListGroups(r.Context())
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}
	payloads := make([]groupPayload, len(groups))
	for i, g := range groups {
		payloads[i] = toGroupPayload(g)
	}
	respondJSON(w, http.StatusOK, map[string]any{"groups": payloads})
}
