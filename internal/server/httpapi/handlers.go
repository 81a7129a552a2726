package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/pacpoom/interface-vdc/internal/common"
	"github.com/pacpoom/interface-vdc/internal/server/services"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type statusResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	VIN     string `json:"vin_number,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("vehicle data center interface service. Use /api/login to get a token.\n"))
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type loginResponse struct {
	Message     string    `json:"message"`
	AccessToken string    `json:"accessToken"`
	User        loginUser `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Authentication failed",
			Message: "Username and password are required.",
		})
		return
	}

	token, principal, err := s.users.Login(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, common.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResponse{
			Error:   "Authentication failed",
			Message: "Invalid username or password.",
		})
		return
	case errors.Is(err, common.ErrAPIKeyInactive):
		writeJSON(w, http.StatusForbidden, errorResponse{
			Error:   "Access Denied",
			Message: "API key is inactive.",
		})
		return
	case err != nil:
		s.logger.Error(r.Context(), "login failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Internal Server Error",
			Message: "Login could not be processed.",
		})
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Message:     fmt.Sprintf("Login successful for user: %s. Use this token for secured endpoints.", principal.Username),
		AccessToken: token,
		User:        loginUser{ID: principal.UserID, Username: principal.Username, Role: principal.Role},
	})
}

type vehicleStatusResponse struct {
	Status       int       `json:"status"`
	VIN          string    `json:"vehicle_number"`
	VehicleCode  string    `json:"vehicle_code"`
	EngineCode   string    `json:"engine_code"`
	GaOffTime    time.Time `json:"ga_off_time"`
	ReceivedFlag int       `json:"pdiin_flg"`
	Message      string    `json:"message"`
}

func (s *Server) handleVehicleStatus(w http.ResponseWriter, r *http.Request) {
	vin := mux.Vars(r)["vin_number"]

	v, err := s.lifecycle.Status(r.Context(), vin)
	if errors.Is(err, common.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, statusResponse{Status: 0, VIN: vin, Message: "No Data"})
		return
	}
	if err != nil {
		s.logger.Error(r.Context(), "vehicle lookup failed", "vin", vin, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Internal Server Error while querying the database.",
			Message: "Vehicle lookup failed.",
		})
		return
	}

	resp := vehicleStatusResponse{
		Status:       1,
		VIN:          v.VIN,
		VehicleCode:  v.VehicleCode,
		EngineCode:   v.EngineCode,
		GaOffTime:    v.GaOffTime,
		ReceivedFlag: v.ReceivedFlag,
		Message:      "Waiting Receive",
	}
	if v.ReceivedFlag == 1 {
		resp.Status = 2
		resp.Message = "Received"
	}
	writeJSON(w, http.StatusOK, resp)
}

type transitionRequest struct {
	VIN string `json:"vin_number"`
}

func (s *Server) handleReceiving(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VIN == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Invalid Input",
			Message: "vin_number (string) is required in the request body.",
		})
		return
	}

	actor := PrincipalFromContext(r.Context()).Username
	result, err := s.lifecycle.Receive(r.Context(), req.VIN, time.Now(), actor)
	if err != nil {
		s.logger.Error(r.Context(), "receive transition failed", "vin", req.VIN, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Internal Server Error while updating the database.",
			Message: fmt.Sprintf("Update failed unexpectedly for VIN: %s.", req.VIN),
		})
		return
	}

	switch result {
	case services.ResultNotFound:
		writeJSON(w, http.StatusNotFound, statusResponse{
			Status:  0,
			Message: fmt.Sprintf("Failed to update. VIN number '%s' not found in gaoff table.", req.VIN),
		})
	case services.ResultConflict:
		writeJSON(w, http.StatusConflict, statusResponse{
			Status:  2,
			Message: fmt.Sprintf("Vehicle with VIN '%s' has already been received (pdiin_flg is already 1).", req.VIN),
		})
	default:
		writeJSON(w, http.StatusOK, statusResponse{
			Status:  1,
			Message: fmt.Sprintf("Successfully updated pdiin_flg to 1 for VIN: %s.", req.VIN),
		})
	}
}

func (s *Server) handleDelivery(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VIN == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Invalid Input",
			Message: "VIN number is required in the request body.",
		})
		return
	}

	actor := PrincipalFromContext(r.Context()).Username
	result, err := s.lifecycle.Deliver(r.Context(), req.VIN, time.Now(), actor)
	if err != nil {
		s.logger.Error(r.Context(), "deliver transition failed", "vin", req.VIN, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Internal Logic Error",
			Message: "An unexpected state occurred during the delivery flag update process.",
		})
		return
	}

	switch result {
	case services.ResultNotFound:
		writeJSON(w, http.StatusNotFound, statusResponse{
			Status:  0,
			VIN:     req.VIN,
			Message: fmt.Sprintf("VIN number '%s' not found in System.", req.VIN),
		})
	case services.ResultConflict:
		writeJSON(w, http.StatusOK, statusResponse{
			Status:  2,
			VIN:     req.VIN,
			Message: fmt.Sprintf("Vehicle with VIN '%s' is already marked as delivered.", req.VIN),
		})
	case services.ResultBlocked:
		writeJSON(w, http.StatusOK, statusResponse{
			Status:  3,
			VIN:     req.VIN,
			Message: fmt.Sprintf("Vehicle with VIN '%s' is waiting for receive (pdiin_flg = 0). Cannot set delivery_flg.", req.VIN),
		})
	default:
		writeJSON(w, http.StatusOK, statusResponse{
			Status:  1,
			VIN:     req.VIN,
			Message: fmt.Sprintf("Successfully updated delivery_flg to 1 for VIN: %s.", req.VIN),
		})
	}
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	actor := PrincipalFromContext(r.Context()).Username

	summary, err := s.sync.SyncPending(r.Context(), actor)
	if errors.Is(err, common.ErrSyncInProgress) {
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:   "Sync In Progress",
			Message: "A sync cycle is already running. Try again later.",
		})
		return
	}
	if err != nil {
		s.logger.Error(r.Context(), "sync cycle failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Internal Server Error",
			Message: "Sync cycle failed.",
		})
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
