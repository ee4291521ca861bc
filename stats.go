package rdmap

// Stats is an occupancy snapshot. Since the bucket array never resizes, it
// is the only way to observe that a capacity hint was mis-sized.
type Stats struct {
	Cnt          int
	Buckets      int
	EmptyBuckets int
	LongestChain int
}

// Stats walks the bucket array and returns the current occupancy.
func (m *Map) Stats() Stats {
	s := Stats{
		Cnt:     m.cnt,
		Buckets: len(m.buckets),
	}
	for _, head := range m.buckets {
		if head == nil {
			s.EmptyBuckets++
			continue
		}

		depth := 0
		for e := head; e != nil; e = e.hnext {
			depth++
		}
		if depth > s.LongestChain {
			s.LongestChain = depth
		}
	}

	return s
}
