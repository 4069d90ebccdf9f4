package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/vigia/pkg/domain/model"
	"github.com/secmon-lab/vigia/pkg/domain/types"
	"github.com/secmon-lab/vigia/pkg/usecase"
)

// adminHandler serves reference data: the intake form options, the login list and the admin panel
type adminHandler struct {
	reference *usecase.Reference
}

func (h *adminHandler) intakeOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.reference.IntakeOptions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, opts)
}

func (h *adminHandler) loginUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.reference.ActiveUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, users)
}

func (h *adminHandler) selectUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.reference.SelectUser(r.Context(), types.UserID(chi.URLParam(r, "userID")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, user)
}

func (h *adminHandler) listSectors(w http.ResponseWriter, r *http.Request) {
	sectors, err := h.reference.ListSectors(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sectors)
}

type createSectorRequest struct {
	Name string `json:"name"`
}

func (h *adminHandler) createSector(w http.ResponseWriter, r *http.Request) {
	var req createSectorRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	sector, err := h.reference.CreateSector(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, sector)
}

func (h *adminHandler) toggleSector(w http.ResponseWriter, r *http.Request) {
	sector, err := h.reference.ToggleSector(r.Context(), types.SectorID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sector)
}

func (h *adminHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.reference.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, users)
}

func (h *adminHandler) createUser(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.reference.CreateUser(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, user)
}

func (h *adminHandler) toggleUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.reference.ToggleUser(r.Context(), types.UserID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, user)
}

func (h *adminHandler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.reference.ListRoles(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, roles)
}

type createRoleRequest struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

func (h *adminHandler) createRole(w http.ResponseWriter, r *http.Request) {
	var req createRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	role, err := h.reference.CreateRole(r.Context(), req.Name, req.Permissions)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, role)
}
