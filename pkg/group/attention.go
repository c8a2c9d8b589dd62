package group

import "time"

const (
	attentionInterval = 500 * time.Millisecond
	attentionToggles  = 10
)

// GetAttention starts the attention flash. While it runs the button
// alternates between its two attention styles; it ends by itself after a
// fixed number of toggles or as soon as a member window gains focus.
func (c *Controller) GetAttention() {
	if !c.active() || c.needsAttention || c.sched == nil {
		return
	}
	c.needsAttention = true
	c.attentionPhase = true
	c.flashes = 0
	c.attentionTask = c.sched.Every(attentionInterval, c.flashTick)
	c.publish()
}

func (c *Controller) flashTick() bool {
	if !c.active() || !c.needsAttention {
		return false
	}
	c.flashes++
	c.attentionPhase = !c.attentionPhase
	if c.flashes >= attentionToggles {
		c.attentionTask = nil
		c.needsAttention = false
		c.attentionPhase = false
		c.publish()
		return false
	}
	c.publish()
	return true
}

func (c *Controller) stopAttention() {
	c.stopTask(&c.attentionTask)
	c.needsAttention = false
	c.attentionPhase = false
}
