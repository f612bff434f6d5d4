package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bcfcore/promion/internal/analysis"
	"github.com/bcfcore/promion/internal/project"
	"github.com/bcfcore/promion/internal/registry"
)

// Project handlers

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	entries, err := s.db.ListProjects()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []registry.ProjectEntry{}
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"projects": entries,
		"count":    len(entries),
	})
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	entry, err := s.db.GetProject(name)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if err := s.db.DeleteProject(name); err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": name})
}

func (s *Server) handleGetProjectFlowCells(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if _, err := s.db.GetProject(name); err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	records, err := s.db.GetRecords(name)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"project":    name,
		"flow_cells": records,
		"count":      len(records),
	})
}

func (s *Server) handleFindFlowCell(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	entries, records, err := s.db.FindFlowCell(id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	results := make([]map[string]interface{}, 0, len(records))
	for i := range records {
		results = append(results, map[string]interface{}{
			"project": entries[i].Name,
			"record":  records[i],
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"flow_cell_id": id,
		"results":      results,
		"count":        len(results),
	})
}

// Scan handler

type scanRequest struct {
	Path string `json:"path"`
}

// handleScan scans a project directory on the server's filesystem and
// records the result in the registry.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Path == "" {
		s.writeError(w, http.StatusBadRequest, "Missing project path")
		return
	}

	p, err := project.Scan(req.Path)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.db.RecordProject(p, analysis.MakeProjectID(p.Name)); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	entry, err := s.db.GetProject(p.Name)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"project":     entry,
		"diagnostics": p.Diagnostics,
	})
}
