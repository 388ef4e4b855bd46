// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

/*
Package validation provides struct validation for API request bodies using
go-playground/validator v10.

A single validator instance is shared process-wide (struct metadata is
cached on first use). Field names in errors follow json tags, and nested
fields are reported by path, so a bad budget inside a recommendation
request is reported as "profile.budget".

# Custom Tags

  - placeid: letters, digits and the separators _ - : .

# Usage

	var req models.RecommendationRequest
	if verr := validation.ValidateStruct(&req); verr != nil {
	    apiErr := verr.ToAPIError()
	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
	    return
	}

Validation is the ingestion boundary only. The recommend package never
rejects input; it clamps out-of-range values instead.
*/
package validation
