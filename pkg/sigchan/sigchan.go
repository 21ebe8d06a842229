package sigchan

// Chan is a non-blocking signal channel. It tells a consumer that something
// happened without carrying data; bursts of Emit calls coalesce once the
// buffer is full, so a single drain can answer many triggers.
type Chan struct {
	c chan struct{}
}

// New creates a signal channel with the given buffer size.
func New(bufferSize int) *Chan {
	return &Chan{
		c: make(chan struct{}, bufferSize),
	}
}

// Emit sends a signal. Never blocks: if the buffer is full the signal is
// dropped, which is fine because a pending signal already covers it.
func (c *Chan) Emit() {
	select {
	case c.c <- struct{}{}:
	default:
	}
}

// C returns the underlying channel for use in select.
func (c *Chan) C() <-chan struct{} {
	return c.c
}
