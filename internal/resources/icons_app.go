package resources

import "fyne.io/fyne/v2"

var appIconResource = fyne.NewStaticResource("resources/app/icon.svg", appIcon)

func AppIconResource() fyne.Resource {
	return appIconResource
}
