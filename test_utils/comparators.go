package test_utils

import (
	"fmt"
	"reflect"
	"sort"
)

// floatTolerance absorbs the rounding of kWh values through JSON.
const floatTolerance = 1e-9

// DeepEqual performs deep equality comparison and reports the path of the
// first difference. Floats compare within a small tolerance and interface
// values (such as a device status) compare by their dynamic value.
func DeepEqual(expected, actual interface{}) error {
	return deepEqual(reflect.ValueOf(expected), reflect.ValueOf(actual), "")
}

func deepEqual(expected, actual reflect.Value, path string) error {
	// Handle nil values
	if !expected.IsValid() || !actual.IsValid() {
		if expected.IsValid() != actual.IsValid() {
			return fmt.Errorf("%s: one value is nil, the other is not", path)
		}
		return nil
	}

	if expected.Type() != actual.Type() {
		return fmt.Errorf("%s: type mismatch: expected %s, got %s", path, expected.Type(), actual.Type())
	}

	switch expected.Kind() {
	case reflect.Ptr, reflect.Interface:
		if expected.IsNil() != actual.IsNil() {
			return fmt.Errorf("%s: nil mismatch: expected %v, got %v", path, expected.IsNil(), actual.IsNil())
		}
		if expected.IsNil() {
			return nil
		}
		return deepEqual(expected.Elem(), actual.Elem(), path)

	case reflect.Struct:
		for i := 0; i < expected.NumField(); i++ {
			field := expected.Type().Field(i)
			if !field.IsExported() {
				continue
			}
			if err := deepEqual(expected.Field(i), actual.Field(i), joinPath(path, field.Name)); err != nil {
				return err
			}
		}
		return nil

	case reflect.Slice:
		if expected.Len() != actual.Len() {
			return fmt.Errorf("%s: slice length mismatch: expected %d, got %d", path, expected.Len(), actual.Len())
		}
		for i := 0; i < expected.Len(); i++ {
			if err := deepEqual(expected.Index(i), actual.Index(i), fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		return nil

	case reflect.Map:
		if expected.Len() != actual.Len() {
			return fmt.Errorf("%s: map length mismatch: expected %d, got %d", path, expected.Len(), actual.Len())
		}
		for _, key := range expected.MapKeys() {
			actualValue := actual.MapIndex(key)
			if !actualValue.IsValid() {
				return fmt.Errorf("%s: missing key %v in actual map", path, key.Interface())
			}
			if err := deepEqual(expected.MapIndex(key), actualValue, fmt.Sprintf("%s[%v]", path, key.Interface())); err != nil {
				return err
			}
		}
		return nil

	case reflect.Float32, reflect.Float64:
		return CompareNumericRanges(expected.Float(), actual.Float(), floatTolerance, path)
	}

	if !reflect.DeepEqual(expected.Interface(), actual.Interface()) {
		return fmt.Errorf("%s: value mismatch: expected %v, got %v", path, expected.Interface(), actual.Interface())
	}
	return nil
}

func joinPath(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}

// CompareNumericRanges compares numeric values within a tolerance
func CompareNumericRanges(expected, actual, tolerance float64, fieldName string) error {
	diff := expected - actual
	if diff < -tolerance || diff > tolerance {
		return fmt.Errorf("%s: numeric value %v is outside tolerance %v of expected %v (diff: %v)",
			fieldName, actual, tolerance, expected, diff)
	}
	return nil
}

// CompareStringLists compares string slices ignoring order
func CompareStringLists(expected, actual []string) error {
	if len(expected) != len(actual) {
		return fmt.Errorf("list length mismatch: expected %d, got %d (%v vs %v)", len(expected), len(actual), expected, actual)
	}

	e := append([]string(nil), expected...)
	a := append([]string(nil), actual...)
	sort.Strings(e)
	sort.Strings(a)

	for i := range e {
		if e[i] != a[i] {
			return fmt.Errorf("lists differ: expected %v, got %v", expected, actual)
		}
	}
	return nil
}
