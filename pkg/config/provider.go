package config

// ConfigProvider defines the interface for run configuration sources
type ConfigProvider interface {
	// LoadConfig returns a defaulted, validated configuration
	LoadConfig() (*RunConfig, error)

	IsReadOnly() bool
	Close() error
}

// RunConfig describes one storm run: a sea and air instrument pair plus the
// deployment they belong to.
type RunConfig struct {
	// OutputName is the base name of every archive and report.
	OutputName string `yaml:"output_name" validate:"required"`
	OutputDir  string `yaml:"output_dir" default:"."`

	Creator CreatorConfig `yaml:"creator"`

	TimeZone        string `yaml:"time_zone" default:"UTC" validate:"required"`
	DaylightSavings bool   `yaml:"daylight_savings"`
	Datum           string `yaml:"datum" default:"NAVD88"`
	Salinity        string `yaml:"salinity" default:"Salt Water (> 30 ppt)" validate:"required"`
	SeaName         string `yaml:"sea_name"`

	// Deployment and retrieval times, YYYYMMDD HHMM in TimeZone.
	DeploymentTime string `yaml:"deployment_time"`
	RetrievalTime  string `yaml:"retrieval_time"`

	InitialLandSurfaceElevation float64 `yaml:"initial_land_surface_elevation"`
	FinalLandSurfaceElevation   float64 `yaml:"final_land_surface_elevation"`

	Sea InstrumentConfig `yaml:"sea"`
	Air InstrumentConfig `yaml:"air"`

	// Sea4Hz enables wave statistics, which need a high-frequency sea record.
	Sea4Hz bool `yaml:"sea_4hz"`

	BaroYLimits       *YLimits `yaml:"baro_y_limits,omitempty"`
	WaterLevelYLimits *YLimits `yaml:"wl_y_limits,omitempty"`

	Statistics map[string]bool `yaml:"statistics" default:"{\"H1/3\":true,\"Average Z Cross\":true,\"PSD Contour\":true}"`
	Spectral   SpectralConfig  `yaml:"spectral"`

	Archive ArchiveConfig `yaml:"archive"`
	Outputs OutputsConfig `yaml:"outputs"`
	Ledger  LedgerConfig  `yaml:"ledger"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// CreatorConfig identifies who produced the archives.
type CreatorConfig struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email" validate:"omitempty,email"`
	URL   string `yaml:"url" validate:"omitempty,url"`
}

// InstrumentConfig describes one deployed pressure logger.
type InstrumentConfig struct {
	File          string  `yaml:"file" validate:"required"`
	Instrument    string  `yaml:"instrument" validate:"required"`
	StationNumber string  `yaml:"stn_station_number"`
	InstrumentID  string  `yaml:"stn_instrument_id"`
	Latitude      float64 `yaml:"latitude" validate:"gte=-90,lte=90"`
	Longitude     float64 `yaml:"longitude" validate:"gte=-180,lte=180"`

	InitialOrificeElevation float64 `yaml:"initial_sensor_orifice_elevation"`
	FinalOrificeElevation   float64 `yaml:"final_sensor_orifice_elevation"`

	// Optional bounds of the usable record, YYYYMMDD HHMM in TimeZone.
	GoodStart string `yaml:"good_start"`
	GoodEnd   string `yaml:"good_end"`
}

// YLimits pins a chart axis.
type YLimits struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max" validate:"gtfield=Min"`
}

// SpectralConfig tunes the wave statistics.
type SpectralConfig struct {
	SegmentLength       int     `yaml:"segment_length" default:"256" validate:"gt=1"`
	Overlap             int     `yaml:"overlap" default:"128" validate:"gte=0,ltfield=SegmentLength"`
	LowCutHz            float64 `yaml:"low_cut_hz" default:"0.045" validate:"gt=0"`
	HighCutHz           float64 `yaml:"high_cut_hz" default:"1.0" validate:"gtfield=LowCutHz"`
	ContourChunkSeconds float64 `yaml:"contour_chunk_seconds" default:"1024" validate:"gt=0"`
}

// ArchiveConfig controls how archives are written.
type ArchiveConfig struct {
	Compression string `yaml:"compression" default:"zstd" validate:"oneof=none snappy zstd gzip"`
}

// OutputsConfig selects report formats.
type OutputsConfig struct {
	Formats []string `yaml:"formats" default:"[\"xlsx\",\"pdf\"]" validate:"dive,oneof=xlsx pdf msgpack json"`
}

// Has reports whether format was requested.
func (o OutputsConfig) Has(format string) bool {
	for _, f := range o.Formats {
		if f == format {
			return true
		}
	}
	return false
}

// LedgerConfig enables the sqlite run ledger when Path is set.
type LedgerConfig struct {
	Path string `yaml:"path"`
}

// MetricsConfig enables the Prometheus textfile when TextfilePath is set.
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path"`
}
