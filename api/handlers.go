/*
handlers.go - HTTP request handlers

PURPOSE:
  Implements the HTTP surface over the trip store and the allowance
  calculator. Every trip mutation (stage added/updated/removed, expense
  added, day flags changed) runs the calculator before saving: a
  consistent itinerary is persisted with fresh derived fields, an
  inconsistent one is rejected with 409 and the exact conflicting field
  paths, leaving the stored trip untouched.

ERROR HANDLING:
  - 400: Malformed input (bad dates, bad decimals)
  - 404: Unknown trip / stage / country
  - 409: Blocking itinerary conflicts
  - 500: Rate resolution failures (configuration gaps) and store errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/travel-engine/calc"
	"github.com/warp/travel-engine/factory"
	"github.com/warp/travel-engine/rates"
	"github.com/warp/travel-engine/trip"
)

// =============================================================================
// STORE DEPENDENCY
// =============================================================================

// Store is the persistence the handlers depend on. Satisfied by both the
// sqlite and the memory store.
type Store interface {
	rates.CountryLookup

	SaveTrip(ctx context.Context, t *trip.Trip) error
	TripByID(ctx context.Context, id string) (*trip.Trip, error)
	ListTrips(ctx context.Context) ([]*trip.Trip, error)
	DeleteTrip(ctx context.Context, id string) error

	UpsertCountry(ctx context.Context, c rates.Country) error
	ListCountries(ctx context.Context) ([]rates.Country, error)

	SaveSettings(ctx context.Context, s calc.Settings) error
	LoadSettings(ctx context.Context) (calc.Settings, error)
}

// =============================================================================
// HANDLER
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	store      Store
	calculator *calc.Calculator
	log        *zap.Logger
}

// NewHandler wires the handler against its store and calculator.
func NewHandler(store Store, calculator *calc.Calculator, log *zap.Logger) *Handler {
	return &Handler{store: store, calculator: calculator, log: log}
}

// =============================================================================
// TRIP HANDLERS
// =============================================================================

// CreateTrip opens a new trip for a traveler.
func (h *Handler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var req CreateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	begin, err := time.ParseInLocation("2006-01-02", req.Begin, time.UTC)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid begin date", err)
		return
	}
	end, err := time.ParseInLocation("2006-01-02", req.End, time.UTC)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end date", err)
		return
	}
	if end.Before(begin) {
		writeError(w, http.StatusBadRequest, "end date before begin date", nil)
		return
	}

	t := &trip.Trip{
		ID:                uuid.NewString(),
		TravelerID:        req.TravelerID,
		Begin:             begin,
		End:               end,
		Destination:       trip.Place{Locality: req.Destination.Locality, Country: req.Destination.Country},
		ClaimSpouseRefund: req.ClaimSpouseRefund,
	}
	if req.LastPlaceOfWork != nil {
		t.LastPlaceOfWork = &trip.Place{
			Locality: req.LastPlaceOfWork.Locality,
			Country:  req.LastPlaceOfWork.Country,
		}
	}

	if err := h.store.SaveTrip(r.Context(), t); err != nil {
		h.log.Error("save trip failed", zap.String("trip_id", t.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save trip", err)
		return
	}
	h.log.Info("trip created", zap.String("trip_id", t.ID), zap.String("traveler_id", t.TravelerID))
	h.writeTrip(w, http.StatusCreated, t)
}

// ListTrips returns all trips.
func (h *Handler) ListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := h.store.ListTrips(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list trips", err)
		return
	}
	docs := make([]factory.TripJSON, 0, len(trips))
	for _, t := range trips {
		docs = append(docs, factory.TripToJSON(t))
	}
	writeJSON(w, http.StatusOK, docs)
}

// GetTrip returns one trip with warnings and expense totals.
func (h *Handler) GetTrip(w http.ResponseWriter, r *http.Request) {
	t, ok := h.loadTrip(w, r)
	if !ok {
		return
	}
	h.writeTrip(w, http.StatusOK, t)
}

// DeleteTrip removes a trip.
func (h *Handler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteTrip(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete trip", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddStage appends a stage and recalculates the trip.
func (h *Handler) AddStage(w http.ResponseWriter, r *http.Request) {
	t, ok := h.loadTrip(w, r)
	if !ok {
		return
	}
	stage, ok := h.decodeStage(w, r, uuid.NewString())
	if !ok {
		return
	}
	t.Stages = append(t.Stages, stage)
	h.recalculateAndSave(w, r, t, http.StatusCreated)
}

// UpdateStage replaces a stage by ID and recalculates the trip.
func (h *Handler) UpdateStage(w http.ResponseWriter, r *http.Request) {
	t, ok := h.loadTrip(w, r)
	if !ok {
		return
	}
	stageID := chi.URLParam(r, "stageID")
	idx := -1
	for i, s := range t.Stages {
		if s.ID == stageID {
			idx = i
			break
		}
	}
	if idx < 0 {
		writeError(w, http.StatusNotFound, "stage not found", nil)
		return
	}
	stage, ok := h.decodeStage(w, r, stageID)
	if !ok {
		return
	}
	t.Stages[idx] = stage
	h.recalculateAndSave(w, r, t, http.StatusOK)
}

// DeleteStage removes a stage by ID and recalculates the trip.
func (h *Handler) DeleteStage(w http.ResponseWriter, r *http.Request) {
	t, ok := h.loadTrip(w, r)
	if !ok {
		return
	}
	stageID := chi.URLParam(r, "stageID")
	kept := t.Stages[:0]
	found := false
	for _, s := range t.Stages {
		if s.ID == stageID {
			found = true
			continue
		}
		kept = append(kept, s)
	}
	if !found {
		writeError(w, http.StatusNotFound, "stage not found", nil)
		return
	}
	t.Stages = kept
	h.recalculateAndSave(w, r, t, http.StatusOK)
}

// AddExpense appends an expense entry and recalculates the trip.
func (h *Handler) AddExpense(w http.ResponseWriter, r *http.Request) {
	t, ok := h.loadTrip(w, r)
	if !ok {
		return
	}
	var req ExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	expense, err := factory.ExpenseFromJSON(factory.ExpenseJSON{
		ID:          uuid.NewString(),
		Description: req.Description,
		Cost:        req.Cost,
		CostDate:    req.CostDate,
		Purpose:     req.Purpose,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid expense", err)
		return
	}
	t.Expenses = append(t.Expenses, expense)
	h.recalculateAndSave(w, r, t, http.StatusCreated)
}

// UpdateDayFlags changes the caller-supplied flags of one day and
// recalculates, so the refunds reflect the new eligibility.
func (h *Handler) UpdateDayFlags(w http.ResponseWriter, r *http.Request) {
	t, ok := h.loadTrip(w, r)
	if !ok {
		return
	}
	date, err := time.ParseInLocation("2006-01-02", chi.URLParam(r, "date"), time.UTC)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid day date", err)
		return
	}
	day, ok := t.DaysByDate()[trip.DayOf(date)]
	if !ok {
		writeError(w, http.StatusNotFound, "day not part of the trip", nil)
		return
	}

	var req DayFlagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Breakfast != nil {
		day.Breakfast = *req.Breakfast
	}
	if req.Lunch != nil {
		day.Lunch = *req.Lunch
	}
	if req.Dinner != nil {
		day.Dinner = *req.Dinner
	}
	if req.OvernightStay != nil {
		day.OvernightStay = *req.OvernightStay
	}
	if req.Purpose != nil {
		day.Purpose = trip.Purpose(*req.Purpose)
	}
	h.recalculateAndSave(w, r, t, http.StatusOK)
}

// =============================================================================
// COUNTRY HANDLERS
// =============================================================================

// ListCountries returns the country table.
func (h *Handler) ListCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := h.store.ListCountries(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list countries", err)
		return
	}
	docs := make([]factory.CountryJSON, 0, len(countries))
	for _, c := range countries {
		docs = append(docs, factory.CountryToJSON(c))
	}
	writeJSON(w, http.StatusOK, docs)
}

// GetCountry returns one country table entry.
func (h *Handler) GetCountry(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.CountryByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		if errors.Is(err, rates.ErrCountryNotFound) {
			writeError(w, http.StatusNotFound, "country not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load country", err)
		return
	}
	writeJSON(w, http.StatusOK, factory.CountryToJSON(*c))
}

// UpsertCountry writes or replaces a country table entry.
func (h *Handler) UpsertCountry(w http.ResponseWriter, r *http.Request) {
	var doc factory.CountryJSON
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	doc.Code = chi.URLParam(r, "code")
	c, err := factory.CountryFromJSON(doc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid country", err)
		return
	}
	if err := h.store.UpsertCountry(r.Context(), c); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save country", err)
		return
	}
	h.log.Info("country updated", zap.String("code", c.Code))
	writeJSON(w, http.StatusOK, factory.CountryToJSON(c))
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// GetSettings returns the active settings snapshot.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, factory.SettingsToJSON(h.calculator.Settings()))
}

// UpdateSettings replaces the settings snapshot, persists it, and
// propagates it into the calculator (and its rate resolver).
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var doc factory.SettingsJSON
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	settings, err := factory.SettingsFromJSON(doc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid settings", err)
		return
	}
	if err := h.store.SaveSettings(r.Context(), settings); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save settings", err)
		return
	}
	h.calculator.UpdateSettings(settings)
	h.log.Info("settings updated", zap.String("fallback_country", settings.FallbackCountry))
	writeJSON(w, http.StatusOK, factory.SettingsToJSON(settings))
}

// =============================================================================
// SHARED PLUMBING
// =============================================================================

func (h *Handler) loadTrip(w http.ResponseWriter, r *http.Request) (*trip.Trip, bool) {
	id := chi.URLParam(r, "id")
	t, err := h.store.TripByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load trip", err)
		return nil, false
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "trip not found", nil)
		return nil, false
	}
	return t, true
}

func (h *Handler) decodeStage(w http.ResponseWriter, r *http.Request, id string) (*trip.Stage, bool) {
	var req StageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return nil, false
	}
	stage, err := factory.StageFromJSON(factory.StageJSON{
		ID:                id,
		Departure:         req.Departure,
		Arrival:           req.Arrival,
		Start:             req.Start,
		End:               req.End,
		Transport:         req.Transport,
		MidnightCountries: req.MidnightCountries,
		Cost:              req.Cost,
		Purpose:           req.Purpose,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid stage", err)
		return nil, false
	}
	if !stage.Arrival.After(stage.Departure) {
		writeError(w, http.StatusBadRequest, "arrival must be after departure", nil)
		return nil, false
	}
	return stage, true
}

// recalculateAndSave runs the calculator over the mutated trip. Conflicts
// reject the mutation with 409 and leave the stored trip untouched;
// otherwise the freshly derived trip is saved and returned.
func (h *Handler) recalculateAndSave(w http.ResponseWriter, r *http.Request, t *trip.Trip, okStatus int) {
	conflicts, err := h.calculator.Calculate(r.Context(), t)
	if err != nil {
		h.log.Error("calculation failed", zap.String("trip_id", t.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "calculation failed", err)
		return
	}
	if len(conflicts) > 0 {
		h.log.Info("trip rejected with conflicts",
			zap.String("trip_id", t.ID), zap.Int("conflicts", len(conflicts)))
		writeJSON(w, http.StatusConflict, ConflictResponse{Conflicts: toConflictDTOs(conflicts)})
		return
	}
	if err := h.store.SaveTrip(r.Context(), t); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save trip", err)
		return
	}
	h.writeTrip(w, okStatus, t)
}

func (h *Handler) writeTrip(w http.ResponseWriter, status int, t *trip.Trip) {
	total := t.TotalExpenses()
	writeJSON(w, status, TripResponse{
		Trip:          factory.TripToJSON(t),
		Warnings:      toWarningDTOs(h.calculator.Check(t)),
		TotalExpenses: factory.MoneyJSON{Amount: total.Amount.String(), Currency: total.Currency},
	})
}

func toConflictDTOs(conflicts []calc.Conflict) []ConflictDTO {
	dtos := make([]ConflictDTO, 0, len(conflicts))
	for _, c := range conflicts {
		dtos = append(dtos, ConflictDTO{Reason: string(c.Reason), Paths: c.Paths})
	}
	return dtos
}

func toWarningDTOs(warnings []calc.Warning) []WarningDTO {
	dtos := make([]WarningDTO, 0, len(warnings))
	for _, wn := range warnings {
		dtos = append(dtos, WarningDTO{Kind: string(wn.Kind), Message: wn.Message})
	}
	return dtos
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
