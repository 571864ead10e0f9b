package schema

import (
	"fmt"
	"strings"
	"time"
)

// Kind identifies the pipeline component category a descriptor belongs to.
type Kind string

const (
	KindSource    Kind = "source"
	KindTransform Kind = "transform"
	KindSink      Kind = "sink"
)

// Kinds lists all component kinds in canonical order.
var Kinds = []Kind{KindSource, KindTransform, KindSink}

// Valid reports whether k is a known component kind.
func (k Kind) Valid() bool {
	switch k {
	case KindSource, KindTransform, KindSink:
		return true
	}
	return false
}

// Plural returns the directory name used for descriptors of this kind.
func (k Kind) Plural() string {
	return string(k) + "s"
}

// Status is the maturity level of a component.
type Status string

const (
	StatusBeta       Status = "beta"
	StatusStable     Status = "stable"
	StatusDeprecated Status = "deprecated"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusBeta, StatusStable, StatusDeprecated:
		return true
	}
	return false
}

// Delivery is the delivery guarantee a source or sink advertises.
type Delivery string

const (
	DeliveryAtLeastOnce Delivery = "at_least_once"
	DeliveryBestEffort  Delivery = "best_effort"
)

// Valid reports whether d is a known delivery guarantee.
func (d Delivery) Valid() bool {
	switch d {
	case DeliveryAtLeastOnce, DeliveryBestEffort:
		return true
	}
	return false
}

// Type is the declared value type of an option or field.
//
// Array types are spelled with brackets, e.g. "[string]" or "[table]",
// mirroring how the descriptors spell them.
type Type string

const (
	TypeBool      Type = "bool"
	TypeInt       Type = "int"
	TypeFloat     Type = "float"
	TypeString    Type = "string"
	TypeTimestamp Type = "timestamp"
	TypeTable     Type = "table"
)

// scalarTypes are the non-container types.
var scalarTypes = map[Type]bool{
	TypeBool:      true,
	TypeInt:       true,
	TypeFloat:     true,
	TypeString:    true,
	TypeTimestamp: true,
}

// IsArray reports whether t is an array type like "[string]".
func (t Type) IsArray() bool {
	return strings.HasPrefix(string(t), "[") && strings.HasSuffix(string(t), "]")
}

// Element returns the element type of an array type.
// For non-array types it returns t unchanged.
func (t Type) Element() Type {
	if !t.IsArray() {
		return t
	}
	return Type(strings.TrimSuffix(strings.TrimPrefix(string(t), "["), "]"))
}

// IsTable reports whether t is "table" or "[table]".
func (t Type) IsTable() bool {
	return t.Element() == TypeTable
}

// Valid reports whether t is a recognized type.
func (t Type) Valid() bool {
	e := t.Element()
	return scalarTypes[e] || e == TypeTable
}

// valueMatches reports whether a YAML-decoded value conforms to the type.
func valueMatches(t Type, v interface{}) bool {
	if v == nil {
		return false
	}
	if t.IsArray() {
		list, ok := v.([]interface{})
		if !ok {
			return false
		}
		for _, item := range list {
			if !valueMatches(t.Element(), item) {
				return false
			}
		}
		return true
	}

	switch t {
	case TypeBool:
		_, ok := v.(bool)
		return ok
	case TypeInt:
		switch v.(type) {
		case int, int64, uint64:
			return true
		}
		return false
	case TypeFloat:
		switch v.(type) {
		case float64, float32, int, int64:
			return true
		}
		return false
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeTimestamp:
		switch v.(type) {
		case time.Time, string:
			return true
		}
		return false
	case TypeTable:
		_, ok := v.(map[string]interface{})
		return ok
	}
	return false
}

func typeName(v interface{}) string {
	return fmt.Sprintf("%T", v)
}
