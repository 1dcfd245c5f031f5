package ptr

// Int32 is used by the pagination options
func Int32(v int32) *int32 {
	return &v
}

// Int32Value dereferences p, def when p is nil or not positive
func Int32Value(p *int32, def int32) int32 {
	if p == nil || *p <= 0 {
		return def
	}
	return *p
}
