package battery

// Sample represents a single fuel-gauge measurement.
type Sample struct {
	Voltage float64 `json:"voltage_v"` // cell voltage
	Percent float64 `json:"percent"`   // state of charge, 0-100
	Time    string  `json:"time"`      // RFC3339
}
