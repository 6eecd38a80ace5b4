// Package geofence decides whether a member may check in: the scanned QR
// payload, the distance from the facility and the facility's opening hours.
// Every function here is pure; nothing is recorded or rate limited.
package geofence

import (
	"math"
	"time"
)

// EarthRadiusMeters is the mean Earth radius used by Distance.
const EarthRadiusMeters = 6371000.0

type Location struct {
	Latitude            float64
	Longitude           float64
	AllowedRadiusMeters float64
}

// Hours are half-open [Open, Close) windows on the local hour of day.
type Hours struct {
	WeekdayOpen  int
	WeekdayClose int
	WeekendOpen  int
	WeekendClose int
}

type Validator struct {
	location Location
	hours    Hours
	qrCode   string
	tz       *time.Location
}

func NewValidator(location Location, hours Hours, qrCode string, tz *time.Location) *Validator {
	if tz == nil {
		tz = time.Local
	}
	return &Validator{
		location: location,
		hours:    hours,
		qrCode:   qrCode,
		tz:       tz,
	}
}

// LocalDate is the facility-local calendar date of t, formatted 2006-01-02.
func (v *Validator) LocalDate(t time.Time) string {
	return t.In(v.tz).Format("2006-01-02")
}

// Distance returns the great-circle distance in meters (Haversine).
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dPhi := toRadians(lat2 - lat1)
	dLambda := toRadians(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	// rounding can push a just past 1 for antipodal points
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// DistanceFrom returns the distance between (lat, lon) and the facility.
func (v *Validator) DistanceFrom(lat, lon float64) float64 {
	return Distance(lat, lon, v.location.Latitude, v.location.Longitude)
}

func (v *Validator) IsWithinRange(lat, lon float64) bool {
	return v.DistanceFrom(lat, lon) <= v.location.AllowedRadiusMeters
}

func (v *Validator) IsOperatingHours(now time.Time) bool {
	local := now.In(v.tz)
	hour := local.Hour()

	open, closeHour := v.hours.WeekdayOpen, v.hours.WeekdayClose
	if wd := local.Weekday(); wd == time.Saturday || wd == time.Sunday {
		open, closeHour = v.hours.WeekendOpen, v.hours.WeekendClose
	}
	return hour >= open && hour < closeHour
}

// ValidateQRCode compares against the single static facility code. The code
// is not secret once printed, so callers must also require IsWithinRange.
func (v *Validator) ValidateQRCode(scanned string) bool {
	return scanned == v.qrCode
}

type Result struct {
	QRValid        bool    `json:"qr_valid"`
	WithinRange    bool    `json:"within_range"`
	OperatingHours bool    `json:"operating_hours"`
	DistanceMeters float64 `json:"distance_meters"`
}

func (r Result) OK() bool {
	return r.QRValid && r.WithinRange && r.OperatingHours
}

// Check runs all three checks so the caller can report every failure at once.
func (v *Validator) Check(lat, lon float64, scanned string, now time.Time) Result {
	distance := v.DistanceFrom(lat, lon)
	return Result{
		QRValid:        v.ValidateQRCode(scanned),
		WithinRange:    distance <= v.location.AllowedRadiusMeters,
		OperatingHours: v.IsOperatingHours(now),
		DistanceMeters: distance,
	}
}
