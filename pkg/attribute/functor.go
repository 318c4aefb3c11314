package attribute

// Functor declares the pure domain functions a user attribute binds when two
// i-cells fuse or one splits (spec.md §3 "Attribute storage").
//
// Merge is called when two previously-distinct i-cells holding a1 and a2
// become one. Split is its inverse: an i-cell holding a is replaced by two,
// holding aL and aR. MergeFromOne handles the degenerate fusion where only
// one side carries a value (e.g. a 2-sew where one of the two vertices has no
// stored position yet) and MergeFromNone handles the fully-absent case.
type Functor[A any] interface {
	Merge(a1, a2 A) (A, error)
	Split(a A) (aL, aR A, error error)
	MergeFromOne(a A) (A, error)
	MergeFromNone() (A, error)
}

// FuncFunctor adapts four plain functions into a Functor, for attributes that
// don't need a dedicated named type.
type FuncFunctor[A any] struct {
	MergeFn         func(a1, a2 A) (A, error)
	SplitFn         func(a A) (A, A, error)
	MergeFromOneFn  func(a A) (A, error)
	MergeFromNoneFn func() (A, error)
}

func (f FuncFunctor[A]) Merge(a1, a2 A) (A, error) { return f.MergeFn(a1, a2) }
func (f FuncFunctor[A]) Split(a A) (A, A, error)   { return f.SplitFn(a) }
func (f FuncFunctor[A]) MergeFromOne(a A) (A, error) {
	if f.MergeFromOneFn != nil {
		return f.MergeFromOneFn(a)
	}
	return a, nil
}
func (f FuncFunctor[A]) MergeFromNone() (A, error) {
	if f.MergeFromNoneFn != nil {
		return f.MergeFromNoneFn()
	}
	var zero A
	return zero, nil
}
