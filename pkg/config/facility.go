package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Facility describes the single gym location used for attendance checks.
type Facility struct {
	Name                string  `mapstructure:"name"`
	Latitude            float64 `mapstructure:"latitude"`
	Longitude           float64 `mapstructure:"longitude"`
	AllowedRadiusMeters float64 `mapstructure:"allowed_radius_meters"`
	QRCode              string  `mapstructure:"qr_code"`
	TimeZone            string  `mapstructure:"time_zone"`
	WeekdayOpenHour     int     `mapstructure:"weekday_open_hour"`
	WeekdayCloseHour    int     `mapstructure:"weekday_close_hour"`
	WeekendOpenHour     int     `mapstructure:"weekend_open_hour"`
	WeekendCloseHour    int     `mapstructure:"weekend_close_hour"`
}

// LoadFacility reads the facility from a YAML file. An empty path or a
// missing file falls back to the defaults; FACILITY_* env vars override both.
func LoadFacility(path string) (*Facility, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("name", "ITNFIT")
	v.SetDefault("latitude", 37.5234)
	v.SetDefault("longitude", 129.1136)
	v.SetDefault("allowed_radius_meters", 100)
	v.SetDefault("qr_code", "ITNFIT-ATTENDANCE-2024")
	v.SetDefault("time_zone", "Asia/Seoul")
	v.SetDefault("weekday_open_hour", 6)
	v.SetDefault("weekday_close_hour", 23)
	v.SetDefault("weekend_open_hour", 8)
	v.SetDefault("weekend_close_hour", 20)

	v.SetEnvPrefix("FACILITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read facility config: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat facility config: %w", err)
		}
	}

	var f Facility
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("failed to decode facility config: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Facility) validate() error {
	if f.Latitude < -90 || f.Latitude > 90 || f.Longitude < -180 || f.Longitude > 180 {
		return fmt.Errorf("facility coordinates out of range: %f,%f", f.Latitude, f.Longitude)
	}
	if f.AllowedRadiusMeters <= 0 {
		return fmt.Errorf("facility radius must be positive")
	}
	if f.QRCode == "" {
		return fmt.Errorf("facility qr_code is required")
	}
	for _, h := range []int{f.WeekdayOpenHour, f.WeekdayCloseHour, f.WeekendOpenHour, f.WeekendCloseHour} {
		if h < 0 || h > 24 {
			return fmt.Errorf("facility hours must be within 0-24")
		}
	}
	return nil
}
