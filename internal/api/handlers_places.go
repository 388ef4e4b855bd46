// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AliTurkarslan/whereto-sub000/internal/database"
	"github.com/AliTurkarslan/whereto-sub000/internal/logging"
	"github.com/AliTurkarslan/whereto-sub000/internal/models"
	"github.com/AliTurkarslan/whereto-sub000/internal/validation"
)

// UpsertPlaces handles POST /api/v1/places.
//
// Upstream shapes are loose (price levels as names, opening hours as
// periods or text); models decodes them, and each place is normalized
// before it is stored.
func (h *Handler) UpsertPlaces(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var batch models.PlaceBatch
	if !decodeJSONBody(w, r, &batch, h.maxBodyBytes()) {
		return
	}
	if apiErr := validateRequest(&batch); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}

	n, err := h.db.UpsertPlaces(r.Context(), batch.Places)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabase, "Failed to store places", err)
		return
	}

	logging.Ctx(r.Context()).Info().Int("count", n).Msg("Places upserted")
	respondSuccess(w, r, http.StatusCreated, map[string]int{"upserted": n}, nil, start)
}

// GetPlace handles GET /api/v1/places/{id}.
func (h *Handler) GetPlace(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id := chi.URLParam(r, "id")
	if err := validation.GetValidator().Var(id, "required,max=128,placeid"); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "Invalid place id", nil)
		return
	}

	place, err := h.db.GetPlace(r.Context(), id)
	if errors.Is(err, database.ErrPlaceNotFound) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Place not found", nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabase, "Failed to load place", err)
		return
	}

	respondSuccess(w, r, http.StatusOK, place, nil, start)
}

// RecordChoice handles POST /api/v1/choices.
func (h *Handler) RecordChoice(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.ChoiceRequest
	if !decodeJSONBody(w, r, &req, h.maxBodyBytes()) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}

	err := h.db.RecordChoice(r.Context(), req.UserID, req.PlaceID)
	if errors.Is(err, database.ErrPlaceNotFound) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Place not found", nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabase, "Failed to record choice", err)
		return
	}

	respondSuccess(w, r, http.StatusCreated, map[string]string{
		"user_id":  req.UserID,
		"place_id": req.PlaceID,
	}, nil, start)
}
