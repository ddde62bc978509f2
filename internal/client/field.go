package client

import "encoding/json"

// Field is a tri-state value for partial updates: unset (the zero value) is
// left out of the request, null clears the field and set sends the value.
type Field[T any] struct {
	value T
	set   bool
	null  bool
}

func Set[T any](v T) Field[T] {
	return Field[T]{value: v, set: true}
}

func Null[T any]() Field[T] {
	return Field[T]{set: true, null: true}
}

func (f Field[T]) IsSet() bool {
	return f.set
}

func (f Field[T]) IsNull() bool {
	return f.set && f.null
}

// Value returns the value and whether one was set; null yields false.
func (f Field[T]) Value() (T, bool) {
	return f.value, f.set && !f.null
}

func (f Field[T]) put(body map[string]any, key string) {
	if !f.set {
		return
	}
	if f.null {
		body[key] = nil
		return
	}
	body[key] = f.value
}

// UpdateTaskData is the body of a PATCH; only set fields reach the wire.
type UpdateTaskData struct {
	Title       Field[string]
	Details     Field[string]
	IsCompleted Field[bool]
	AlarmTime   Field[string]
	RepeatDays  Field[[]string]
	DueDate     Field[string]
}

func (d UpdateTaskData) MarshalJSON() ([]byte, error) {
	body := make(map[string]any)
	d.Title.put(body, "title")
	d.Details.put(body, "details")
	d.IsCompleted.put(body, "is_completed")
	d.AlarmTime.put(body, "alarm_time")
	d.RepeatDays.put(body, "repeat_days")
	d.DueDate.put(body, "due_date")
	return json.Marshal(body)
}

func (d UpdateTaskData) Empty() bool {
	return !d.Title.set && !d.Details.set && !d.IsCompleted.set &&
		!d.AlarmTime.set && !d.RepeatDays.set && !d.DueDate.set
}
