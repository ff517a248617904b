package airquality

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildChartFixedOrder(t *testing.T) {
	chart := BuildChart(PollutantReading{AQI: 3, PM25: 40, PM10: 60, NO2: 12, CO: 200, O3: 99})

	require.Equal(t, "Pollutant Levels", chart.Title)
	require.Equal(t, "outside", chart.TextPosition)
	require.Len(t, chart.Points, 4)

	codes := make([]string, 0, len(chart.Points))
	values := make([]float64, 0, len(chart.Points))
	for _, p := range chart.Points {
		codes = append(codes, p.Code)
		values = append(values, p.Value)
	}
	require.Equal(t, []string{"co", "no2", "pm2_5", "pm10"}, codes)
	require.Equal(t, []float64{200, 12, 40, 60}, values)
	require.Equal(t, "Fine Particulate Matter (PM2.5)", chart.Points[2].Label)
}

func TestSummaryLinesOnlyParticulates(t *testing.T) {
	lines := summaryLines(PollutantReading{PM25: 40.5, PM10: 60, NO2: 12, CO: 200})
	require.Equal(t, []string{"PM10 Levels: 60 µg/m³", "PM2.5 Levels: 40.5 µg/m³"}, lines)
}

func TestBuildAdvicePrompt(t *testing.T) {
	prompt := buildAdvicePrompt(ConditionAsthma, PollutantReading{AQI: 3, PM25: 40, PM10: 60, NO2: 12, CO: 200})

	require.Contains(t, prompt, "'Asthma'")
	require.Contains(t, prompt, "(AQI) is 3, categorized as 'Unhealthy for Sensitive Groups (101-150)'")
	require.Contains(t, prompt, "- PM2.5: 40 µg/m³")
	require.Contains(t, prompt, "- PM10: 60 µg/m³")
	require.Contains(t, prompt, "- NO2: 12 µg/m³")
	require.Contains(t, prompt, "- CO: 200 µg/m³")
	require.Contains(t, prompt, "1. Specific health precautions")
	require.Contains(t, prompt, "2. Recommended indoor and outdoor activities")
	require.Contains(t, prompt, "3. Additional lifestyle tips")
}

func TestBuildChatPrompt(t *testing.T) {
	prompt := buildChatPrompt("Can I jog today?")
	require.Contains(t, prompt, "You are an air quality expert.")
	require.Contains(t, prompt, `A user asked: "Can I jog today?".`)
}
