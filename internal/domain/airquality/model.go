package airquality

import (
	"strings"
	"time"

	"github.com/yanqian/airquality-advisor/pkg/metrics"
)

// State is the orchestration outcome carried by a Report.
type State string

const (
	// StateIdle means no location was submitted and nothing was looked up.
	StateIdle State = "idle"
	// StateReady means a reading was fetched and every derived output is populated.
	StateReady State = "ready"
)

// HealthCondition is one of the closed set of conditions the advisor tailors advice to.
type HealthCondition string

const (
	ConditionNone         HealthCondition = "None"
	ConditionAsthma       HealthCondition = "Asthma"
	ConditionCOPD         HealthCondition = "Chronic Obstructive Pulmonary Disease (COPD)"
	ConditionLungCancer   HealthCondition = "Lung Cancer"
	ConditionHeartDisease HealthCondition = "Heart Disease"
	ConditionHypertension HealthCondition = "Hypertension (High Blood Pressure)"
	ConditionCognitive    HealthCondition = "Cognitive Decline"
	ConditionPregnancy    HealthCondition = "Pregnancy (Low Birth Weight Risk)"
)

// Conditions lists the selectable conditions in display order.
func Conditions() []HealthCondition {
	return []HealthCondition{
		ConditionNone,
		ConditionAsthma,
		ConditionCOPD,
		ConditionLungCancer,
		ConditionHeartDisease,
		ConditionHypertension,
		ConditionCognitive,
		ConditionPregnancy,
	}
}

// ParseCondition resolves user input against the closed set, case-insensitively.
// Blank input means ConditionNone.
func ParseCondition(raw string) (HealthCondition, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ConditionNone, true
	}
	for _, c := range Conditions() {
		if strings.EqualFold(string(c), trimmed) {
			return c, true
		}
	}
	return "", false
}

// Coordinates is a geographic point in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Location is a single geocoding match.
type Location struct {
	Name        string      `json:"name"`
	State       string      `json:"state,omitempty"`
	Country     string      `json:"country,omitempty"`
	Coordinates Coordinates `json:"coordinates"`
}

// PollutantReading is the current air pollution snapshot at a point. Concentrations are µg/m³.
type PollutantReading struct {
	AQI        int       `json:"aqi"`
	CO         float64   `json:"co"`
	NO         float64   `json:"no"`
	NO2        float64   `json:"no2"`
	O3         float64   `json:"o3"`
	SO2        float64   `json:"so2"`
	PM25       float64   `json:"pm2_5"`
	PM10       float64   `json:"pm10"`
	NH3        float64   `json:"nh3"`
	MeasuredAt time.Time `json:"measuredAt,omitzero"`
}

// AssessRequest is submitted when the user enters a location.
type AssessRequest struct {
	Location  string `json:"location"`
	Condition string `json:"condition"`
}

// Report is everything the dashboard renders for one location submission.
type Report struct {
	ID              string              `json:"id,omitempty"`
	State           State               `json:"state"`
	Location        string              `json:"location,omitempty"`
	ResolvedName    string              `json:"resolvedName,omitempty"`
	Country         string              `json:"country,omitempty"`
	Condition       HealthCondition     `json:"condition,omitempty"`
	Coordinates     *Coordinates        `json:"coordinates,omitempty"`
	Reading         *PollutantReading   `json:"reading,omitempty"`
	Category        string              `json:"category,omitempty"`
	Summary         []string            `json:"summary,omitempty"`
	Chart           *Chart              `json:"chart,omitempty"`
	Advice          string              `json:"advice,omitempty"`
	AdviceAvailable bool                `json:"adviceAvailable"`
	Usage           *metrics.TokenUsage `json:"tokenUsage,omitempty"`
	GeneratedAt     time.Time           `json:"generatedAt"`
}

// ChatRequest carries a free-text question.
type ChatRequest struct {
	Question string `json:"question"`
}

// ChatReply is the answer to a ChatRequest.
type ChatReply struct {
	Question  string              `json:"question"`
	Answer    string              `json:"answer"`
	Available bool                `json:"available"`
	Usage     *metrics.TokenUsage `json:"tokenUsage,omitempty"`
}

// ChatChunk is a streamed fragment of a chat answer.
type ChatChunk struct {
	Delta     string `json:"delta,omitempty"`
	Completed bool   `json:"completed"`
	Available bool   `json:"available"`
}

// AssessmentRecord is the history row kept for each ready report.
type AssessmentRecord struct {
	ID        string          `json:"id"`
	Location  string          `json:"location"`
	Country   string          `json:"country,omitempty"`
	Latitude  float64         `json:"latitude"`
	Longitude float64         `json:"longitude"`
	AQI       int             `json:"aqi"`
	Category  string          `json:"category"`
	Condition HealthCondition `json:"condition"`
	CreatedAt time.Time       `json:"createdAt"`
}

// TrendingLocation is a location with the number of times it was assessed.
type TrendingLocation struct {
	Location string `json:"location"`
	Count    int64  `json:"count"`
}

// Config wires runtime settings for the advisor domain.
type Config struct {
	Model        string
	Temperature  float32
	GeocodeLimit int
	HistoryLimit int
	TrendingSize int
}
