package accel

// Raw is a single raw accelerometer reading in sensor LSB units.
type Raw struct {
	Ax int16 `json:"ax"`
	Ay int16 `json:"ay"`
	Az int16 `json:"az"`
}

// Sample is a 3-axis acceleration sample scaled to g.
type Sample struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// Reading pairs a raw reading with its scaled counterpart.
type Reading struct {
	Raw    Raw    `json:"raw"`
	Sample Sample `json:"sample"`
}

// Source is anything that can produce accelerometer readings over time:
// the real LSM6DS3, the mock walker, maybe a replay source from file later.
type Source interface {
	// Init brings up the sensor. The source is unusable until Init
	// returns nil.
	Init() error
	ReadAccel() (Reading, error)
}
