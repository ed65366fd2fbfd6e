package models

// IconCandidate is an image offered by an icon source during one search
type IconCandidate struct {
	Source string // Provider name
	URL    string // Where the image was fetched from
	Path   string // Temporary PNG owned by the search session
	Data   []byte // Normalized PNG bytes
	Vector bool   // Rasterized from an SVG
}

// Label returns a short description for pickers
func (c IconCandidate) Label() string {
	kind := "raster"
	if c.Vector {
		kind = "svg"
	}
	return c.Source + " (" + kind + ") " + c.URL
}
