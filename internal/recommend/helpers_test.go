// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package recommend

import (
	"github.com/AliTurkarslan/whereto-sub000/internal/models"
)

func ptrFloat(v float64) *float64 { return &v }

func ptrInt(v int) *int { return &v }

// openPlace returns a place with no opening-hours data (open by default),
// moderate price and no sentiment.
func openPlace(id string) models.Place {
	return models.Place{
		ID:         id,
		Name:       "Place " + id,
		Category:   "cafe",
		DistanceKm: 1.5,
		PriceTier:  2,
	}
}

// samplePlaces returns a varied candidate set for property tests.
func samplePlaces() []models.Place {
	out := make([]models.Place, 0, 24)
	atmospheres := []models.Atmosphere{
		models.AtmosphereQuiet, models.AtmosphereLively, models.AtmosphereRomantic,
		models.AtmosphereCasual, models.AtmosphereFormal, "",
	}
	categories := []string{"cafe", "restaurant", "bar"}
	for i := 0; i < 24; i++ {
		p := openPlace(string(rune('a'+i)) + "-place")
		p.Category = categories[i%len(categories)]
		p.PriceTier = models.PriceTier(i % 5)
		p.Atmosphere = atmospheres[i%len(atmospheres)]
		p.DistanceKm = float64(i%7) * 0.8
		p.Amenities.WheelchairAccessible = i%2 == 0
		p.Amenities.Wifi = i%3 == 0
		p.Amenities.IndoorSeating = i%4 != 0
		p.Amenities.OutdoorSeating = i%4 == 0
		p.Meals.Breakfast = i%3 == 1
		p.Meals.Dinner = i%2 == 1
		p.Latitude = 41.0 + float64(i)*0.001
		p.Longitude = 29.0 + float64(i%5)*0.001
		if i%5 != 0 {
			p.QualityScore = ptrFloat(float64(40 + i*2))
			p.ReviewCount = ptrInt(i * 10)
		}
		if i%6 == 0 {
			p.Hours = models.ExplicitFlag(false)
		}
		if i%3 == 0 {
			p.Sentiment = models.Sentiment{
				Quality: ptrFloat(float64(50 + i)),
				Service: ptrFloat(float64(90 - i)),
			}
		}
		out = append(out, p)
	}
	return out
}
