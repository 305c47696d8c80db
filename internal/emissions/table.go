package emissions

import (
	"sort"

	"greentrack/internal/models"
)

// Entry holds the conversion data for one activity type: how many kg of CO2
// equivalent a single unit of that activity emits. Factors may be negative
// (avoided emissions, e.g. recycling).
type Entry struct {
	Category string
	Factor   float64 // kg CO2e per unit
	Unit     string
}

// Table is an immutable mapping from activity type to its emissions entry.
// It is loaded once at startup and injected where needed.
type Table struct {
	entries map[string]Entry
}

// DefaultTable returns the built-in coefficient table.
// NOTE: These are simplified, example values for development purposes.
func DefaultTable() *Table {
	return &Table{entries: map[string]Entry{
		// Transport (unit: Miles)
		"Car (Gasoline)": {Category: models.CategoryTransport, Factor: 0.404, Unit: "Miles"},
		"Car (Electric)": {Category: models.CategoryTransport, Factor: 0.05, Unit: "Miles"}, // Assuming a clean grid mix
		"Bus / Train":    {Category: models.CategoryTransport, Factor: 0.08, Unit: "Miles"},
		"Airplane":       {Category: models.CategoryTransport, Factor: 0.2, Unit: "Miles"},

		// Food (unit: Meals)
		"Meat-Heavy Meal": {Category: models.CategoryFood, Factor: 3.5, Unit: "Meals"},
		"Standard Meal":   {Category: models.CategoryFood, Factor: 1.5, Unit: "Meals"},
		"Vegetarian Meal": {Category: models.CategoryFood, Factor: 0.8, Unit: "Meals"},
		"Vegan Meal":      {Category: models.CategoryFood, Factor: 0.5, Unit: "Meals"},

		// Home Energy (unit: kWh)
		"Electricity": {Category: models.CategoryHomeEnergy, Factor: 0.518, Unit: "kWh"}, // Varies greatly by region
		"Natural Gas": {Category: models.CategoryHomeEnergy, Factor: 0.18, Unit: "kWh"},

		// Waste (unit: Bags)
		"Garbage Bag (to landfill)":     {Category: models.CategoryWaste, Factor: 2.0, Unit: "Bags"},
		"Recycling (avoided emissions)": {Category: models.CategoryWaste, Factor: -0.5, Unit: "Bags"},
	}}
}

// Lookup returns the entry for an activity type, and whether it exists.
func (t *Table) Lookup(activityType string) (Entry, bool) {
	entry, ok := t.entries[activityType]
	return entry, ok
}

// CatalogEntry is the client-facing description of one activity type.
type CatalogEntry struct {
	Category string  `json:"category"`
	Type     string  `json:"type"`
	Unit     string  `json:"unit"`
	Factor   float64 `json:"factor"`
}

// Catalog lists every known activity type, sorted by category then type, so
// clients can build input forms without duplicating the table.
func (t *Table) Catalog() []CatalogEntry {
	catalog := make([]CatalogEntry, 0, len(t.entries))
	for activityType, entry := range t.entries {
		catalog = append(catalog, CatalogEntry{
			Category: entry.Category,
			Type:     activityType,
			Unit:     entry.Unit,
			Factor:   entry.Factor,
		})
	}
	sort.Slice(catalog, func(i, j int) bool {
		if catalog[i].Category != catalog[j].Category {
			return catalog[i].Category < catalog[j].Category
		}
		return catalog[i].Type < catalog[j].Type
	})
	return catalog
}
