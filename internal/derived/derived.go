// Package derived computes read-time values from stored patient and diet chart fields.
// Nothing here is persisted. A nil result means the inputs were insufficient.
package derived

import (
	"math"
	"strings"
	"time"

	"aahaara-data/internal/domain"
)

const (
	DefaultCalorieTarget      = 2000
	DefaultActivityMultiplier = 1.375
)

// Age returns whole years between dob and asOf, or nil when dob is unknown.
func Age(dob *time.Time, asOf time.Time) *int {
	if dob == nil {
		return nil
	}
	years := asOf.Year() - dob.Year()
	if asOf.Month() < dob.Month() || (asOf.Month() == dob.Month() && asOf.Day() < dob.Day()) {
		years--
	}
	return &years
}

// BMI is weight / (height in metres)^2 rounded to two decimals.
func BMI(heightCm, weightKg *float64) *float64 {
	if heightCm == nil || weightKg == nil || *heightCm <= 0 || *weightKg <= 0 {
		return nil
	}
	m := *heightCm / 100
	v := round(*weightKg/(m*m), 2)
	return &v
}

// CalorieTarget applies Harris-Benedict BMR times the activity multiplier, truncated.
// Missing or non-positive inputs, or a sex other than male/female, yield DefaultCalorieTarget.
func CalorieTarget(weightKg, heightCm *float64, ageYears *int, sex string, activity float64) int {
	if weightKg == nil || heightCm == nil || ageYears == nil || *weightKg <= 0 || *heightCm <= 0 {
		return DefaultCalorieTarget
	}
	if activity <= 0 {
		activity = DefaultActivityMultiplier
	}
	w, h, a := *weightKg, *heightCm, float64(*ageYears)

	var bmr float64
	switch strings.ToLower(strings.TrimSpace(sex)) {
	case domain.GenderMale:
		bmr = 88.362 + 13.397*w + 4.799*h - 5.677*a
	case domain.GenderFemale:
		bmr = 447.593 + 9.247*w + 3.098*h - 4.330*a
	default:
		return DefaultCalorieTarget
	}
	return int(bmr * activity)
}

// DoshaBreakdown is the percentage share of each dosha score.
type DoshaBreakdown struct {
	Vata  float64 `json:"vata"`
	Pitta float64 `json:"pitta"`
	Kapha float64 `json:"kapha"`
}

// DoshaPercentages divides each score by the total, one decimal. All zero when the total is zero.
func DoshaPercentages(vata, pitta, kapha int) DoshaBreakdown {
	total := float64(vata + pitta + kapha)
	if total == 0 {
		return DoshaBreakdown{}
	}
	return DoshaBreakdown{
		Vata:  round(float64(vata)/total*100, 1),
		Pitta: round(float64(pitta)/total*100, 1),
		Kapha: round(float64(kapha)/total*100, 1),
	}
}

// dualDoshaMargin is the score distance within which a second dosha co-dominates.
const dualDoshaMargin = 10

// DominantDosha labels the constitution from raw scores. A dosha within dualDoshaMargin
// of the top score joins it; when all three do the result is tridosha.
func DominantDosha(vata, pitta, kapha int) string {
	top := max(vata, pitta, kapha)
	near := func(s int) bool { return top-s <= dualDoshaMargin }

	v, p, k := near(vata), near(pitta), near(kapha)
	switch {
	case v && p && k:
		return domain.DoshaTridosha
	case v && p:
		return domain.DoshaVataPitta
	case v && k:
		return domain.DoshaVataKapha
	case p && k:
		return domain.DoshaPittaKapha
	case v:
		return domain.DoshaVata
	case p:
		return domain.DoshaPitta
	}
	return domain.DoshaKapha
}

// DaysRemaining counts whole days from today until end, never negative.
func DaysRemaining(end *time.Time, today time.Time) int {
	if end == nil {
		return 0
	}
	d := daysBetween(today, *end)
	if d < 0 {
		return 0
	}
	return d
}

// ProgressPercentage is elapsed/totalDays inside [start, end], 100 after end, 0 otherwise.
func ProgressPercentage(start, end *time.Time, totalDays int, today time.Time) float64 {
	if totalDays <= 0 || start == nil || end == nil {
		return 0
	}
	if daysBetween(*end, today) > 0 {
		return 100
	}
	elapsed := daysBetween(*start, today)
	if elapsed < 0 {
		return 0
	}
	return math.Min(100, round(float64(elapsed)/float64(totalDays)*100, 1))
}

// daysBetween compares calendar dates, ignoring time of day.
func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
