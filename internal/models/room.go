package models

// Room is static catalog data loaded from configs/rooms.yaml.
// RatePerNight is in whole pesos.
type Room struct {
	ID           int64  `yaml:"id" json:"id"`
	Name         string `yaml:"name" json:"name"`
	RatePerNight int64  `yaml:"rate_per_night" json:"rate_per_night"`
	Capacity     int    `yaml:"capacity" json:"capacity"`
	Image        string `yaml:"image" json:"image,omitempty"`
}
