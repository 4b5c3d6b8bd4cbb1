package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/guidebook/internal/ports/primary"
)

// GetGuide returns the manual's guide document with its revision.
func (s *Server) GetGuide(w http.ResponseWriter, r *http.Request) {
	doc, err := s.svc.Guides.GetGuide(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// GuideSteps lists the reachable steps; ?category= starts from that category's entry point.
func (s *Server) GuideSteps(w http.ResponseWriter, r *http.Request) {
	steps, err := s.svc.Guides.Steps(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("category"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, steps)
}

// AddStep appends a step to the guide.
func (s *Server) AddStep(w http.ResponseWriter, r *http.Request) {
	var req primary.AddStepRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	req.ManualID = chi.URLParam(r, "id")
	s.writeEdit(w, r, http.StatusCreated)(s.svc.Guides.AddStep(r.Context(), req))
}

// UpdateStep edits the step named by {nodeID}.
func (s *Server) UpdateStep(w http.ResponseWriter, r *http.Request) {
	var req primary.UpdateStepRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	req.ManualID = chi.URLParam(r, "id")
	req.NodeID = chi.URLParam(r, "nodeID")
	s.writeEdit(w, r, http.StatusOK)(s.svc.Guides.UpdateStep(r.Context(), req))
}

// DeleteStep removes a step and the edges touching it.
func (s *Server) DeleteStep(w http.ResponseWriter, r *http.Request) {
	target, err := guideTarget(r, "nodeID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeEdit(w, r, http.StatusOK)(s.svc.Guides.DeleteStep(r.Context(), target))
}

// Connect adds an edge between two steps.
func (s *Server) Connect(w http.ResponseWriter, r *http.Request) {
	var req primary.ConnectRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	req.ManualID = chi.URLParam(r, "id")
	s.writeEdit(w, r, http.StatusCreated)(s.svc.Guides.Connect(r.Context(), req))
}

// Disconnect removes the edge named by {edgeID}.
func (s *Server) Disconnect(w http.ResponseWriter, r *http.Request) {
	target, err := guideTarget(r, "edgeID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeEdit(w, r, http.StatusOK)(s.svc.Guides.Disconnect(r.Context(), target))
}

// AutoLayout recomputes step positions.
func (s *Server) AutoLayout(w http.ResponseWriter, r *http.Request) {
	var req primary.AutoLayoutRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	req.ManualID = chi.URLParam(r, "id")
	s.writeEdit(w, r, http.StatusOK)(s.svc.Guides.AutoLayout(r.Context(), req))
}

// guideTarget reads a node or edge target from the URL; DELETE carries no body.
func guideTarget(r *http.Request, param string) (primary.GuideTarget, error) {
	rev, err := expectedRevision(r)
	if err != nil {
		return primary.GuideTarget{}, err
	}
	return primary.GuideTarget{
		ManualID:         chi.URLParam(r, "id"),
		ID:               chi.URLParam(r, param),
		ExpectedRevision: rev,
	}, nil
}

func (s *Server) writeEdit(w http.ResponseWriter, r *http.Request, status int) func(*primary.GuideEditResponse, error) {
	return func(resp *primary.GuideEditResponse, err error) {
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		writeJSON(w, status, resp)
	}
}
