package types

// PressureType distinguishes the submerged instrument from the atmospheric reference.
type PressureType string

const (
	SeaPressure PressureType = "Sea Pressure"
	AirPressure PressureType = "Air Pressure"
)

// UnitsDecibar is the unit every adapter normalises pressure to.
const UnitsDecibar = "dbar"

// Metadata describes an instrument deployment. It travels with the series into
// every archive so each archive is self-describing.
type Metadata struct {
	InstrumentName   string       `json:"instrument_name"`
	StationNumber    string       `json:"stn_station_number,omitempty"`
	InstrumentID     string       `json:"stn_instrument_id,omitempty"`
	Latitude         float64      `json:"latitude"`
	Longitude        float64      `json:"longitude"`
	SeaName          string       `json:"sea_name,omitempty"`
	Datum            string       `json:"datum,omitempty"`
	Salinity         string       `json:"salinity,omitempty"`
	PressureType     PressureType `json:"pressure_type"`
	Units            string       `json:"units"`
	Variable         string       `json:"variable"`
	Reference        bool         `json:"reference"`
	TimeZone         string       `json:"time_zone,omitempty"`
	DaylightSavings  bool         `json:"daylight_savings"`
	DeploymentMs     int64        `json:"deployment_ms,omitempty"`
	RetrievalMs      int64        `json:"retrieval_ms,omitempty"`
	InitialOrificeM  float64      `json:"initial_sensor_orifice_elevation"`
	FinalOrificeM    float64      `json:"final_sensor_orifice_elevation"`
	InitialLandSurfM float64      `json:"initial_land_surface_elevation"`
	FinalLandSurfM   float64      `json:"final_land_surface_elevation"`
	CreatorName      string       `json:"creator_name,omitempty"`
	CreatorEmail     string       `json:"creator_email,omitempty"`
	CreatorURL       string       `json:"creator_url,omitempty"`
	SourceFile       string       `json:"source_file,omitempty"`
	SamplingRateHz   float64      `json:"sampling_rate_hz,omitempty"`
}

// VariableName returns the archive variable role for a channel.
func VariableName(reference bool) string {
	if reference {
		return "air_pressure"
	}
	return "sea_pressure"
}
