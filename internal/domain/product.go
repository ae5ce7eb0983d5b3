package domain

import "time"

// FormattedProduct is the provider-defined product record returned to
// callers. The controller does not interpret it.
type FormattedProduct struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Brand       string     `json:"brand"`
	Quantity    string     `json:"quantity,omitempty"`
	Categories  []string   `json:"categories,omitempty"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	NutriScore  string     `json:"nutriScore,omitempty"`
	Ingredients string     `json:"ingredients,omitempty"`
	Nutrition   *Nutrition `json:"nutrition,omitempty"`
}

// Nutrition values are per 100g. A nil field means the upstream did not report it.
type Nutrition struct {
	EnergyKcal    *float64 `json:"energyKcal,omitempty"`
	Fat           *float64 `json:"fat,omitempty"`
	SaturatedFat  *float64 `json:"saturatedFat,omitempty"`
	Carbohydrates *float64 `json:"carbohydrates,omitempty"`
	Sugars        *float64 `json:"sugars,omitempty"`
	Fiber         *float64 `json:"fiber,omitempty"`
	Proteins      *float64 `json:"proteins,omitempty"`
	Salt          *float64 `json:"salt,omitempty"`
}

func (n Nutrition) IsEmpty() bool {
	return n.EnergyKcal == nil && n.Fat == nil && n.SaturatedFat == nil &&
		n.Carbohydrates == nil && n.Sugars == nil && n.Fiber == nil &&
		n.Proteins == nil && n.Salt == nil
}

type CachedProduct struct {
	Product   *FormattedProduct
	FetchedAt time.Time
}

func (c CachedProduct) IsFresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(c.FetchedAt) < ttl
}
