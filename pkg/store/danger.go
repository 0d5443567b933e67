package store

// The functions in this file operate on the raw store and bypass
// notification and observers entirely. They exist so tests can set up and
// tear down state without re-rendering anything. Production code must not
// call them.

// DangerClear removes every entry without notifying anyone.
func DangerClear(c *Cache) {
	c.data.Clear()
}

// DangerSet stores value under key without notifying anyone.
// Unlike Set it accepts any key, including the empty string.
func DangerSet(c *Cache, key string, value any) {
	c.data.Set(key, value)
}

// DangerGet reads key from the raw store.
func DangerGet(c *Cache, key string) (any, bool) {
	return c.data.Get(key)
}
