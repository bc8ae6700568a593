package engine

import (
	"github.com/GoSim-25-26J-441/scenario-engine/pkg/models"
)

// Extreme-day thresholds. A day counts at most once, however many channels
// cross their threshold.
const (
	extremeTempHigh  = 35.0
	extremeTempLow   = -20.0
	extremePrecip    = 50.0
	extremeWindSpeed = 80.0
)

// decodeBuffer aggregates a raw result buffer into one ScenarioRecord per
// iteration. Indices outside the buffer are skipped and counted instead of
// faulting, mirroring the kernel's write-side bounds check; the returned
// count is the diagnostic for silently dropped positions.
func decodeBuffer(buf []float32, layout BufferLayout) ([]models.ScenarioRecord, uint64) {
	records := make([]models.ScenarioRecord, 0, layout.Iterations)
	var skipped uint64

	read := func(idx int) (float64, bool) {
		if idx < 0 || idx >= len(buf) {
			skipped++
			return 0, false
		}
		return float64(buf[idx]), true
	}

	totalDays := float64(layout.Years * layout.Days)

	for iter := 0; iter < layout.Iterations; iter++ {
		var (
			extremeEvents uint32
			sumTemp       float64
			totalPrecip   float64
			maxWind       float64
		)

		for year := 0; year < layout.Years; year++ {
			for day := 0; day < layout.Days; day++ {
				temp, okT := read(layout.Index(iter, year, day, channelTemperature))
				precip, okP := read(layout.Index(iter, year, day, channelPrecipitation))
				wind, okW := read(layout.Index(iter, year, day, channelWindSpeed))

				if okT {
					sumTemp += temp
				}
				if okP {
					totalPrecip += precip
				}
				if okW && wind > maxWind {
					maxWind = wind
				}

				extreme := (okT && (temp > extremeTempHigh || temp < extremeTempLow)) ||
					(okP && precip > extremePrecip) ||
					(okW && wind > extremeWindSpeed)
				if extreme {
					extremeEvents++
				}
			}
		}

		records = append(records, models.ScenarioRecord{
			Iteration:            uint32(iter),
			ExtremeWeatherEvents: extremeEvents,
			AvgTemperature:       sumTemp / totalDays,
			TotalPrecipitation:   totalPrecip,
			MaxWindSpeed:         maxWind,
			Confidence:           acceleratedConfidence,
		})
	}

	return records, skipped
}
