package tooltip

// parkedOffset moves an element well outside the visible flow so measuring
// it neither flashes on screen nor gets clipped by the viewport.
const parkedOffset = "-999999px"

// sizeCache memoizes the rendered footprint of the overlay until its content
// changes.
type sizeCache struct {
	size  Size
	valid bool
	dirty bool
}

func (c *sizeCache) invalidate() {
	c.dirty = true
}

func (c *sizeCache) measure(el Element) Size {
	if c.valid && !c.dirty {
		return c.size
	}

	el.SetStyle(StyleLeft, parkedOffset)
	el.SetStyle(StyleRight, Auto.String())
	c.size = el.OffsetSize()
	el.SetStyle(StyleLeft, Auto.String())

	c.valid = true
	c.dirty = false

	return c.size
}
