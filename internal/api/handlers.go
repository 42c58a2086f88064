package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/medbook/vaccine-scheduler/internal/booking"
	"github.com/medbook/vaccine-scheduler/internal/identity"
	"github.com/medbook/vaccine-scheduler/internal/inventory"
	"github.com/medbook/vaccine-scheduler/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

func registerHandler(svc *identity.Service, role identity.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if req.Username == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "missing_fields", "username and password are required")
			return
		}

		err := svc.Register(r.Context(), role, req.Username, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, identity.ErrUsernameTaken):
				writeError(w, http.StatusConflict, "username_taken", err.Error())
			case errors.Is(err, identity.ErrWeakPassword):
				writeError(w, http.StatusUnprocessableEntity, "weak_password", err.Error())
			default:
				writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			}
			return
		}

		writeJSON(w, http.StatusCreated, map[string]string{"username": req.Username})
	}
}

func loginHandler(svc *identity.Service, sessions *session.RedisStore, role identity.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		id, err := svc.Authenticate(r.Context(), role, req.Username, req.Password)
		if err != nil {
			if errors.Is(err, identity.ErrInvalidCredentials) {
				writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid username or password")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		token, err := sessions.Create(r.Context(), id.Role, id.Username)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, LoginResponse{Token: token})
	}
}

func logoutHandler(sessions *session.RedisStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())
		if err := sessions.Delete(r.Context(), caller.Token); err != nil {
			if errors.Is(err, session.ErrNotLoggedIn) {
				writeError(w, http.StatusUnauthorized, "not_logged_in", "no active session")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func scheduleHandler(bookings *booking.Service, stock *inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := chi.URLParam(r, "date")

		caregivers, err := bookings.ListAvailable(r.Context(), date)
		if err != nil {
			if errors.Is(err, booking.ErrInvalidDate) {
				writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		vaccines, err := stock.ListInStock(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		resp := ScheduleResponse{Date: date, Caregivers: caregivers}
		for _, v := range vaccines {
			resp.Vaccines = append(resp.Vaccines, VaccineStock{Name: v.Name, Doses: v.Doses})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func reserveHandler(bookings *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())
		if caller.Role != identity.RolePatient {
			writeError(w, http.StatusForbidden, "wrong_role", "only patients can reserve appointments")
			return
		}

		var req ReserveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		appt, err := bookings.Reserve(r.Context(), caller.Username, req.Date, req.Vaccine)
		if err != nil {
			switch {
			case errors.Is(err, booking.ErrInvalidDate):
				writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
			case errors.Is(err, inventory.ErrInsufficientDoses):
				writeError(w, http.StatusUnprocessableEntity, "insufficient_doses", err.Error())
			case errors.Is(err, booking.ErrNoCaregiverAvailable):
				writeError(w, http.StatusUnprocessableEntity, "no_caregiver_available", err.Error())
			default:
				writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			}
			return
		}

		writeJSON(w, http.StatusCreated, ReserveResponse{
			AppointmentID: appt.ID,
			Caregiver:     appt.Caregiver,
		})
	}
}

func publishAvailabilityHandler(bookings *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())
		if caller.Role != identity.RoleCaregiver {
			writeError(w, http.StatusForbidden, "wrong_role", "only caregivers can publish availability")
			return
		}

		var req PublishAvailabilityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		err := bookings.Publish(r.Context(), caller.Username, req.Date)
		if err != nil {
			switch {
			case errors.Is(err, booking.ErrInvalidDate):
				writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
			case errors.Is(err, booking.ErrSlotAlreadyPublished):
				writeError(w, http.StatusConflict, "already_published", err.Error())
			default:
				writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			}
			return
		}

		writeJSON(w, http.StatusCreated, map[string]string{"date": req.Date})
	}
}

func addDosesHandler(stock *inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())
		if caller.Role != identity.RoleCaregiver {
			writeError(w, http.StatusForbidden, "wrong_role", "only caregivers can add doses")
			return
		}

		var req AddDosesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "missing_fields", "name is required")
			return
		}

		if err := stock.AddDoses(r.Context(), req.Name, req.Doses); err != nil {
			if errors.Is(err, inventory.ErrInvalidAmount) {
				writeError(w, http.StatusBadRequest, "invalid_amount", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		doses, err := stock.GetDoses(r.Context(), req.Name)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, VaccineStock{Name: req.Name, Doses: doses})
	}
}

func listAppointmentsHandler(bookings *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())

		appts, err := bookings.ListForUser(r.Context(), caller.Role, caller.Username)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		resp := make([]AppointmentResponse, 0, len(appts))
		for _, a := range appts {
			resp = append(resp, AppointmentResponse{
				ID:        a.ID,
				Date:      a.Date.Format(booking.DateLayout),
				Caregiver: a.Caregiver,
				Patient:   a.Patient,
				Vaccine:   a.Vaccine,
			})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
