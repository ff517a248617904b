package airquality

// Category is the severity bucket behind an OpenWeather AQI index.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryGood
	CategoryModerate
	CategorySensitive
	CategoryUnhealthy
	CategoryVeryUnhealthy
)

var categoryLabels = map[Category]string{
	CategoryGood:          "Good (0-50)",
	CategoryModerate:      "Moderate (51-100)",
	CategorySensitive:     "Unhealthy for Sensitive Groups (101-150)",
	CategoryUnhealthy:     "Unhealthy (151-200)",
	CategoryVeryUnhealthy: "Very Unhealthy (201-300)",
}

// Classify maps an AQI index to its category. Values outside 1..5 map to CategoryUnknown.
func Classify(index int) Category {
	c := Category(index)
	if _, ok := categoryLabels[c]; !ok {
		return CategoryUnknown
	}
	return c
}

// Label returns the display string for the category.
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return "Unknown"
}

// Known reports whether c is one of the five documented buckets.
func (c Category) Known() bool {
	_, ok := categoryLabels[c]
	return ok
}

func (c Category) String() string {
	return c.Label()
}
