package store

// Op is a single buffered write.
type Op func(SetDeleter) error

// SetOp writes value under key.
func SetOp(key, value []byte) Op {
	return func(out SetDeleter) error { return out.Set(key, value) }
}

// DelOp removes key.
func DelOp(key []byte) Op {
	return func(out SetDeleter) error { return out.Delete(key) }
}

// NonAtomicBatch collects operations and replays them one by one on Write.
// A failure halfway leaves the earlier operations applied, so only use it in
// front of stores without a batch of their own, such as the in memory one.
type NonAtomicBatch struct {
	out SetDeleter
	ops []Op
}

var _ Batch = (*NonAtomicBatch)(nil)

func NewNonAtomicBatch(out SetDeleter) *NonAtomicBatch {
	return &NonAtomicBatch{out: out}
}

func (b *NonAtomicBatch) Set(key, value []byte) error {
	b.ops = append(b.ops, SetOp(key, value))
	return nil
}

func (b *NonAtomicBatch) Delete(key []byte) error {
	b.ops = append(b.ops, DelOp(key))
	return nil
}

// Len returns the number of operations waiting for Write.
func (b *NonAtomicBatch) Len() int {
	return len(b.ops)
}

// Write applies the pending operations in the order they were added.
func (b *NonAtomicBatch) Write() error {
	for i, op := range b.ops {
		if err := op(b.out); err != nil {
			b.ops = b.ops[i:]
			return err
		}
	}
	b.ops = nil
	return nil
}
