package resources

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

type UIIcon string

const (
	UIIconMarkerPin UIIcon = "marker_pin"
	UIIconMarkerDot UIIcon = "marker_dot"
)

var uiDarkIconResources = map[UIIcon]fyne.Resource{
	UIIconMarkerPin: fyne.NewStaticResource("resources/ui/dark/marker_pin.svg", uiDarkMarkerPin),
	UIIconMarkerDot: fyne.NewStaticResource("resources/ui/dark/marker_dot.svg", uiDarkMarkerDot),
}

var uiLightIconResources = map[UIIcon]fyne.Resource{
	UIIconMarkerPin: fyne.NewStaticResource("resources/ui/light/marker_pin.svg", uiLightMarkerPin),
	UIIconMarkerDot: fyne.NewStaticResource("resources/ui/light/marker_dot.svg", uiLightMarkerDot),
}

// UIIconResource returns the icon for variant, falling back to the dark set.
func UIIconResource(icon UIIcon, variant fyne.ThemeVariant) fyne.Resource {
	if variant == theme.VariantLight {
		if res, ok := uiLightIconResources[icon]; ok {
			return res
		}
	}
	if res, ok := uiDarkIconResources[icon]; ok {
		return res
	}

	return nil
}
