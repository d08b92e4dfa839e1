package app

const (
	Name           = "maptip"
	AppID          = "in.skobk.maptip"
	SourceURL      = "https://git.skobk.in/skobkin/maptip"
	ConfigFilename = "config.json"
	LogFilename    = "app.log"
	MarkersFile    = "markers.yaml"
	MapTilesDir    = "map_tiles"
)
