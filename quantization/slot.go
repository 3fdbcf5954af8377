package quantization

// SlotRange returns the half-open dimension range [start, end) owned by
// slot i of a D-dimensional vector split into M slots.
//
// Every slot is floor(D/M) wide. The last slot is capped at D rather than
// extended to it, so when D is not a multiple of M the trailing D mod M
// dimensions belong to no slot.
func SlotRange(i, dimension, numSubvectors int) (start, end int) {
	subDim := dimension / numSubvectors
	start = i * subDim
	end = start + subDim
	if i == numSubvectors-1 {
		end = min(end, dimension)
	}
	return start, end
}

// SlotRange returns the dimension range of slot i under the configured tail policy.
func (pq *ProductQuantizer) SlotRange(i int) (start, end int) {
	start, end = SlotRange(i, pq.cfg.Dimension, pq.cfg.NumSubvectors)
	if pq.cfg.Tail == TailExtend && i == pq.cfg.NumSubvectors-1 {
		end = pq.cfg.Dimension
	}
	return start, end
}

// DecodedDimension returns the length of vectors produced by Decode.
// It equals Dimension unless the tail is truncated and D is not a multiple of M.
func (pq *ProductQuantizer) DecodedDimension() int {
	_, end := pq.SlotRange(pq.cfg.NumSubvectors - 1)
	return end
}
