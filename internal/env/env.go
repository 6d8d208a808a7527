// Package env fills config structs from GODAILY_* (and other) environment variables.
package env

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"
)

var (
	durationType = reflect.TypeFor[time.Duration]()
	timeType     = reflect.TypeFor[time.Time]()
)

// Validator is implemented by config structs that check themselves after loading.
type Validator interface {
	Validate() error
}

// ErrInvalidValue reports a variable whose value does not parse into its field.
type ErrInvalidValue struct {
	Field  string
	EnvVar string
	Value  string
	Err    error
}

func (e ErrInvalidValue) Error() string {
	return fmt.Sprintf("invalid value for %s=%q (field: %s): %v", e.EnvVar, e.Value, e.Field, e.Err)
}

func (e ErrInvalidValue) Unwrap() error {
	return e.Err
}

// ErrNotStructPointer reports a Load target that is not a pointer to a struct.
type ErrNotStructPointer struct {
	Type string
}

func (e ErrNotStructPointer) Error() string {
	return fmt.Sprintf("env.Load: argument must be a pointer to struct, got %s", e.Type)
}

// ErrUnsupportedType reports a tagged field of a kind Load cannot set.
type ErrUnsupportedType struct {
	Kind string
}

func (e ErrUnsupportedType) Error() string {
	return fmt.Sprintf("unsupported type: %s", e.Kind)
}

// Load sets the tagged fields of the struct v points to.
//
//	Port    string        `env:"GODAILY_HTTP_PORT"`
//	Timeout time.Duration `env:"GODAILY_SHUTDOWN_TIMEOUT" default:"10s"`
//
// A default applies only when the variable is unset and the field is still zero,
// so values decoded from a config file survive. Fields may be strings, bools,
// signed integers or time.Duration. Nested structs are walked and validated
// depth first; v itself is validated last.
func Load(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return ErrNotStructPointer{Type: fmt.Sprintf("%T", v)}
	}

	if err := load(rv.Elem()); err != nil {
		return err
	}
	return validate(rv)
}

func load(val reflect.Value) error {
	typ := val.Type()

	for i := range val.NumField() {
		field, sf := val.Field(i), typ.Field(i)
		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct && field.Type() != timeType {
			if err := load(field); err != nil {
				return err
			}
			if err := validate(field.Addr()); err != nil {
				return err
			}
			continue
		}

		raw, ok := lookup(sf, field)
		if !ok {
			continue
		}
		if err := set(field, raw); err != nil {
			return ErrInvalidValue{Field: sf.Name, EnvVar: sf.Tag.Get("env"), Value: raw, Err: err}
		}
	}
	return nil
}

// lookup returns the raw value for a field: the variable if set, otherwise its
// default while the field is zero.
func lookup(sf reflect.StructField, field reflect.Value) (string, bool) {
	name := sf.Tag.Get("env")
	if name == "" {
		return "", false
	}
	if raw, ok := os.LookupEnv(name); ok {
		return raw, true
	}
	def, ok := sf.Tag.Lookup("default")
	if !ok || !field.IsZero() {
		return "", false
	}
	return def, true
}

func validate(ptr reflect.Value) error {
	if v, ok := ptr.Interface().(Validator); ok {
		return v.Validate()
	}
	return nil
}

func set(field reflect.Value, raw string) error {
	switch {
	case field.Type() == durationType:
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))

	case field.Kind() == reflect.String:
		field.SetString(raw)

	case field.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case field.CanInt():
		n, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)

	default:
		return ErrUnsupportedType{Kind: field.Kind().String()}
	}
	return nil
}
