package slices

// map each element in sli.
//
// args:
//   - sli : slice of `T`s
//   - mapper : mapping function from T to R
//
// return:
//
//	slice of `R`s. The element indexed `N` is `mapper(sli[N])` .
func Map[T any, R any](sli []T, mapper func(v T) R) []R {
	ret := make([]R, len(sli))
	for nth, v := range sli {
		ret[nth] = mapper(v)
	}
	return ret
}

// Map over sli with mapper, stopping at the first error.
func MapUntilError[T any, R any](sli []T, mapper func(v T) (R, error)) ([]R, error) {
	ret := make([]R, len(sli))
	for nth, v := range sli {
		r, err := mapper(v)
		if err != nil {
			return nil, err
		}
		ret[nth] = r
	}
	return ret, nil
}

// filter elements match with predicator
//
// The result is never nil, and keeps the order of vs.
func Filter[T any](vs []T, predicator func(T) bool) []T {
	ret := []T{}
	for _, v := range vs {
		if predicator(v) {
			ret = append(ret, v)
		}
	}
	return ret
}

// find first element match with predicator.
//
// retruns:
//
//	(T, true) if found. otherwise, (zero value of T, false)
func First[T any](sli []T, predicator func(T) bool) (T, bool) {
	for _, v := range sli {
		if predicator(v) {
			return v, true
		}
	}

	var zero T
	return zero, false
}

// Partition splits s into elements matching p and the others, keeping order in both.
func Partition[T any](s []T, p func(T) bool) (match []T, notmatch []T) {
	for _, v := range s {
		if p(v) {
			match = append(match, v)
		} else {
			notmatch = append(notmatch, v)
		}
	}
	return
}

// UniqBy drops elements whose key has been seen already.
//
// The first occurrence wins.
func UniqBy[T any, K comparable](s []T, key func(T) K) []T {
	seen := map[K]struct{}{}
	ret := make([]T, 0, len(s))
	for _, v := range s {
		k := key(v)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		ret = append(ret, v)
	}
	return ret
}

// convert slice to map.
//
// If keys given with getkey collides, a value coming latter takes over previous.
func ToMap[T any, K comparable](sli []T, getkey func(v T) K) map[K]T {
	m := make(map[K]T, len(sli))
	for _, v := range sli {
		m[getkey(v)] = v
	}
	return m
}

// concatenate slices
func Concat[T any](sli ...[]T) []T {
	l := 0
	for _, s := range sli {
		l += len(s)
	}

	dest := make([]T, 0, l)
	for _, s := range sli {
		dest = append(dest, s...)
	}
	return dest
}
