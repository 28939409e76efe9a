package margins

import "fmt"

// Collapse accumulates adjoining margins. Collapsed value is the largest
// positive contribution plus the most negative one.
type Collapse struct {
	maxPositive float32
	minNegative float32
}

func NewCollapse(margins ...float32) *Collapse {
	c := &Collapse{}
	for _, m := range margins {
		c.Join(m)
	}
	return c
}

// Join adds margin to the set of adjoining margins.
func (c *Collapse) Join(margin float32) {
	if c.maxPositive < margin {
		c.maxPositive = margin
	} else if c.minNegative > margin {
		c.minNegative = margin
	}
}

// JoinCollapse adds all margins accumulated by another collapse.
func (c *Collapse) JoinCollapse(other *Collapse) {
	if other == nil {
		return
	}
	c.Join(other.maxPositive)
	c.Join(other.minNegative)
}

// Size returns resolved collapsed margin.
func (c *Collapse) Size() float32 {
	if c == nil {
		return 0
	}
	return c.maxPositive + c.minNegative
}

func (c *Collapse) Clone() *Collapse {
	if c == nil {
		return nil
	}
	cc := *c
	return &cc
}

func (c *Collapse) String() string {
	if c == nil {
		return "-"
	}
	return fmt.Sprintf("%g(+%g/%g)", c.Size(), c.maxPositive, c.minNegative)
}
