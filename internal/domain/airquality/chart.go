package airquality

// Chart is a labelled bar series handed to the charting front end.
type Chart struct {
	Title        string       `json:"title"`
	XLabel       string       `json:"xLabel"`
	YLabel       string       `json:"yLabel"`
	TextPosition string       `json:"textPosition"`
	TextTemplate string       `json:"textTemplate"`
	Points       []ChartPoint `json:"points"`
}

// ChartPoint is one bar.
type ChartPoint struct {
	Code  string  `json:"code"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// BuildChart reshapes a reading into the pollutant bar series, always ordered CO, NO2, PM2.5, PM10.
func BuildChart(reading PollutantReading) Chart {
	return Chart{
		Title:        "Pollutant Levels",
		XLabel:       "Pollutant",
		YLabel:       "Concentration (µg/m³)",
		TextPosition: "outside",
		TextTemplate: "%{text:.2s}",
		Points: []ChartPoint{
			{Code: "co", Label: "Carbon Monoxide (CO)", Value: reading.CO},
			{Code: "no2", Label: "Nitrogen Dioxide (NO2)", Value: reading.NO2},
			{Code: "pm2_5", Label: "Fine Particulate Matter (PM2.5)", Value: reading.PM25},
			{Code: "pm10", Label: "Coarse Particulate Matter (PM10)", Value: reading.PM10},
		},
	}
}
