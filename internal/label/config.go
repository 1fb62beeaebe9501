package label

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// Layout defines the printable label geometry in millimeters. Defaults match
// a 50x50mm industrial thermal label with a 33mm QR symbol.
type Layout struct {
	WidthMM     float64 `yaml:"width_mm"`
	HeightMM    float64 `yaml:"height_mm"`
	QRSizeMM    float64 `yaml:"qr_size_mm"`
	BrandFontPt float64 `yaml:"brand_font_pt"`
	MetaFontPt  float64 `yaml:"meta_font_pt"`
}

// DefaultLayout returns the stock thermal-label geometry.
func DefaultLayout() Layout {
	return Layout{
		WidthMM:     50,
		HeightMM:    50,
		QRSizeMM:    33,
		BrandFontPt: 6,
		MetaFontPt:  5,
	}
}

// LoadLayout loads layout overrides from a yaml file when LABEL_CONFIG is
// set, falling back to defaults otherwise.
func LoadLayout() (Layout, error) {
	layout := DefaultLayout()
	if path := os.Getenv("LABEL_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return layout, err
		}
		if err := yaml.Unmarshal(data, &layout); err != nil {
			return layout, err
		}
	}
	if err := layout.Validate(); err != nil {
		return layout, err
	}
	return layout, nil
}

// Validate rejects geometry the composer cannot draw.
func (l Layout) Validate() error {
	if l.WidthMM <= 0 || l.HeightMM <= 0 {
		return errors.New("label: page size must be positive")
	}
	if l.QRSizeMM <= 0 || l.QRSizeMM > l.WidthMM || l.QRSizeMM > l.HeightMM {
		return errors.New("label: qr size must fit the page")
	}
	if l.BrandFontPt <= 0 || l.MetaFontPt <= 0 {
		return errors.New("label: font sizes must be positive")
	}
	return nil
}
