package config

import "sort"

// Presets are common viewports, useful for headless renders.
var Presets = map[string]ViewportConfig{
	"phone":     {Width: 375, Height: 667},
	"tablet":    {Width: 768, Height: 1024},
	"laptop":    {Width: 1024, Height: 768},
	"desktop":   {Width: 1920, Height: 1080},
	"ultrawide": {Width: 3440, Height: 1440},
}

func GetPreset(name string) *ViewportConfig {
	vp, ok := Presets[name]
	if !ok {
		return nil
	}
	return &vp
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
