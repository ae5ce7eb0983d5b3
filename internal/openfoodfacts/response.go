package openfoodfacts

import (
	"strconv"
	"strings"

	"foodfacts/internal/domain"
)

type productResponse struct {
	Code          string       `json:"code"`
	Status        int          `json:"status"`
	StatusVerbose string       `json:"status_verbose"`
	Product       *productData `json:"product"`
}

type productData struct {
	Code            string         `json:"code"`
	ProductName     string         `json:"product_name"`
	GenericName     string         `json:"generic_name"`
	Brands          string         `json:"brands"`
	Quantity        string         `json:"quantity"`
	CategoriesTags  []string       `json:"categories_tags"`
	ImageURL        string         `json:"image_url"`
	NutriscoreGrade string         `json:"nutriscore_grade"`
	IngredientsText string         `json:"ingredients_text"`
	Nutriments      map[string]any `json:"nutriments"`
}

func formatProduct(requested string, body productResponse) *domain.FormattedProduct {
	p := body.Product

	id := firstNonEmpty(p.Code, body.Code, requested)
	name := strings.TrimSpace(firstNonEmpty(p.ProductName, p.GenericName))

	product := &domain.FormattedProduct{
		ID:          id,
		Name:        name,
		Brand:       primaryBrand(p.Brands),
		Quantity:    strings.TrimSpace(p.Quantity),
		Categories:  stripLanguagePrefix(p.CategoriesTags),
		ImageURL:    p.ImageURL,
		NutriScore:  nutriScore(p.NutriscoreGrade),
		Ingredients: strings.TrimSpace(p.IngredientsText),
	}

	nutrition := domain.Nutrition{
		EnergyKcal:    nutriment(p.Nutriments, "energy-kcal_100g"),
		Fat:           nutriment(p.Nutriments, "fat_100g"),
		SaturatedFat:  nutriment(p.Nutriments, "saturated-fat_100g"),
		Carbohydrates: nutriment(p.Nutriments, "carbohydrates_100g"),
		Sugars:        nutriment(p.Nutriments, "sugars_100g"),
		Fiber:         nutriment(p.Nutriments, "fiber_100g"),
		Proteins:      nutriment(p.Nutriments, "proteins_100g"),
		Salt:          nutriment(p.Nutriments, "salt_100g"),
	}
	if !nutrition.IsEmpty() {
		product.Nutrition = &nutrition
	}

	return product
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// primaryBrand keeps the first entry of the comma separated brands list.
func primaryBrand(brands string) string {
	first, _, _ := strings.Cut(brands, ",")
	return strings.TrimSpace(first)
}

func stripLanguagePrefix(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if _, rest, ok := strings.Cut(tag, ":"); ok {
			tag = rest
		}
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func nutriScore(grade string) string {
	switch g := strings.ToLower(strings.TrimSpace(grade)); g {
	case "", "unknown", "not-applicable":
		return ""
	default:
		return strings.ToUpper(g)
	}
}

func nutriment(values map[string]any, key string) *float64 {
	raw, ok := values[key]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case float64:
		return &v
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}
