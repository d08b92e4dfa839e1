package resources

import _ "embed"

//go:embed app/icon.svg
var appIcon []byte

//go:embed ui/dark/marker_pin.svg
var uiDarkMarkerPin []byte

//go:embed ui/dark/marker_dot.svg
var uiDarkMarkerDot []byte

//go:embed ui/light/marker_pin.svg
var uiLightMarkerPin []byte

//go:embed ui/light/marker_dot.svg
var uiLightMarkerDot []byte
