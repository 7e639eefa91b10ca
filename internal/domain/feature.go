package domain

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownCategory = errors.New("unknown category")

// Category is one of the fixed feature groups shown in the catalog.
type Category string

const (
	CategoryProductivity      Category = "Productivity"
	CategoryCommunication     Category = "Communication"
	CategoryInformation       Category = "Information"
	CategoryEntertainment     Category = "Entertainment"
	CategorySmartHome         Category = "Smart Home"
	CategoryHealthFitness     Category = "Health & Fitness"
	CategoryFinance           Category = "Finance"
	CategoryTravel            Category = "Travel"
	CategoryShopping          Category = "Shopping"
	CategoryEducation         Category = "Education"
	CategoryUtilities         Category = "Utilities"
	CategorySecurity          Category = "Security"
	CategorySocialMedia       Category = "Social Media"
	CategoryNewsMedia         Category = "News & Media"
	CategoryFoodDining        Category = "Food & Dining"
	CategoryWeather           Category = "Weather"
	CategoryNavigation        Category = "Navigation"
	CategoryPersonalAssistant Category = "Personal Assistant"
	CategoryDeveloperTools    Category = "Developer Tools"
	CategorySystem            Category = "System"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryProductivity,
	CategoryCommunication,
	CategoryInformation,
	CategoryEntertainment,
	CategorySmartHome,
	CategoryHealthFitness,
	CategoryFinance,
	CategoryTravel,
	CategoryShopping,
	CategoryEducation,
	CategoryUtilities,
	CategorySecurity,
	CategorySocialMedia,
	CategoryNewsMedia,
	CategoryFoodDining,
	CategoryWeather,
	CategoryNavigation,
	CategoryPersonalAssistant,
	CategoryDeveloperTools,
	CategorySystem,
}

// ParseCategory matches s against the fixed set, ignoring case and surrounding space.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownCategory, s)
}

// FeatureRecord is one entry of the feature catalog. Records are never mutated after load;
// Name is unique across the catalog.
type FeatureRecord struct {
	ID             FeatureID `json:"id"`
	Name           string    `json:"name"`
	Category       Category  `json:"category"`
	TriggerCommand string    `json:"command,omitempty"`
	Description    string    `json:"description"`
}

func (f FeatureRecord) HasTrigger() bool {
	return f.TriggerCommand != ""
}
