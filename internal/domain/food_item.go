package domain

import (
	"strings"
	"time"

	"github.com/lib/pq"
)

const (
	EffectPacifies   = "pacifies"
	EffectAggravates = "aggravates"
	EffectNeutral    = "neutral"
)

var DoshaEffects = []string{EffectPacifies, EffectAggravates, EffectNeutral}

var Viryas = []string{"Heating", "Cooling", "Neutral"}

// FoodItem maps food_items. Nutrition values are per serving.
type FoodItem struct {
	FoodID       string         `db:"food_id"`
	Name         string         `db:"name"`
	ServingSize  string         `db:"serving_size"`
	Calories     float64        `db:"calories"`
	ProteinG     float64        `db:"protein_g"`
	CarbsG       float64        `db:"carbs_g"`
	FatG         float64        `db:"fat_g"`
	FiberG       float64        `db:"fiber_g"`
	Rasa         pq.StringArray `db:"rasa"`
	Guna         pq.StringArray `db:"guna"`
	Virya        string         `db:"virya"`
	VataEffect   string         `db:"vata_effect"`
	PittaEffect  string         `db:"pitta_effect"`
	KaphaEffect  string         `db:"kapha_effect"`
	MealTypes    pq.StringArray `db:"meal_types"`
	FoodCategory string         `db:"food_category"`
	Tags         pq.StringArray `db:"tags"`
	CreatedBy    string         `db:"created_by"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// IsTridoshic is true only when the food pacifies all three doshas.
func (f *FoodItem) IsTridoshic() bool {
	return f.VataEffect == EffectPacifies &&
		f.PittaEffect == EffectPacifies &&
		f.KaphaEffect == EffectPacifies
}

// DoshaSummary renders the effects as "Vata+, Pitta-" style text, or
// "Neutral" when the food moves no dosha either way.
func (f *FoodItem) DoshaSummary() string {
	var parts []string
	for _, d := range []struct{ name, effect string }{
		{"Vata", f.VataEffect}, {"Pitta", f.PittaEffect}, {"Kapha", f.KaphaEffect},
	} {
		switch d.effect {
		case EffectPacifies:
			parts = append(parts, d.name+"+")
		case EffectAggravates:
			parts = append(parts, d.name+"-")
		}
	}
	if len(parts) == 0 {
		return "Neutral"
	}
	return strings.Join(parts, ", ")
}

// DoshaBalance returns the per-dosha effect keyed by dosha name.
func (f *FoodItem) DoshaBalance() map[string]string {
	return map[string]string{
		DoshaVata:  f.VataEffect,
		DoshaPitta: f.PittaEffect,
		DoshaKapha: f.KaphaEffect,
	}
}
