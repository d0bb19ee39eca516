package employee

// Optional は更新入力の項目を「未指定」「null 指定」「値指定」の三状態で表します。
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some は値指定の Optional を返します。
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null は null 指定の Optional を返します。
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// IsNull は null が明示されているかを返します。
func (o Optional[T]) IsNull() bool {
	return o.Set && o.Value == nil
}

// HasValue は値が指定されているかを返します。
func (o Optional[T]) HasValue() bool {
	return o.Set && o.Value != nil
}
