package cache

import "golang.org/x/sync/singleflight"

// Group coalesces concurrent work for identical keys: at most one job runs
// per key at a time, every concurrent caller for that key shares its result,
// and the in-flight registration is dropped when the job settles, success or
// failure alike. N simultaneous resolutions of one grid cell therefore cost
// exactly one upstream round trip.
//
// It is a typed wrapper over singleflight.Group.
type Group[T any] struct {
	sf singleflight.Group
}

// Do runs job under key, or joins the job already in flight for key.
func (g *Group[T]) Do(key string, job func() (T, error)) (T, error) {
	v, err, _ := g.sf.Do(key, func() (any, error) {
		return job()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
