package airquality

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// AdviceFallback is shown when the LLM cannot produce advice.
	AdviceFallback = "Unable to fetch advice at the moment. Please try again later."
	// ChatFallback is shown when the LLM cannot answer a chat question.
	ChatFallback = "Unable to process your query at the moment. Please try again later."
)

func buildAdvicePrompt(condition HealthCondition, reading PollutantReading) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an air quality and health advisor. The user has the condition: '%s'.\n", condition)
	fmt.Fprintf(&b, "The air quality index (AQI) is %d, categorized as '%s'.\n", reading.AQI, Classify(reading.AQI).Label())
	b.WriteString("Pollutant levels are:\n")
	fmt.Fprintf(&b, "- PM2.5: %s µg/m³\n", formatConcentration(reading.PM25))
	fmt.Fprintf(&b, "- PM10: %s µg/m³\n", formatConcentration(reading.PM10))
	fmt.Fprintf(&b, "- NO2: %s µg/m³\n", formatConcentration(reading.NO2))
	fmt.Fprintf(&b, "- CO: %s µg/m³\n", formatConcentration(reading.CO))
	b.WriteString("\nBased on this information, provide:\n")
	b.WriteString("1. Specific health precautions for the user.\n")
	b.WriteString("2. Recommended indoor and outdoor activities.\n")
	b.WriteString("3. Additional lifestyle tips to mitigate air pollution effects.")
	return b.String()
}

func buildChatPrompt(question string) string {
	return fmt.Sprintf("You are an air quality expert. A user asked: \"%s\".\n"+
		"Provide a clear, actionable, and accurate response regarding their question on air pollution and its health effects.", question)
}

// summaryLines renders the plain-text particulate lines shown next to the AQI metric.
// Only PM10 and PM2.5 are listed; the chart carries all four pollutants.
func summaryLines(reading PollutantReading) []string {
	return []string{
		fmt.Sprintf("PM10 Levels: %s µg/m³", formatConcentration(reading.PM10)),
		fmt.Sprintf("PM2.5 Levels: %s µg/m³", formatConcentration(reading.PM25)),
	}
}

func formatConcentration(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
