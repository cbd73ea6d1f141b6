// Package autometric initializes OpenTelemetry instruments declared as struct fields.
//
// Field tags:
//
//	name        metric name, defaults to snake_case field name
//	unit        metric unit
//	description metric description
//	boundaries  comma-separated histogram bucket boundaries
//	autometric  "-" to skip the field
package autometric

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"
)

// InitOptions defines options for [Init].
type InitOptions struct {
	// Prefix defines common prefix for all metrics, like "promqlcheck.rulelint.".
	Prefix string
}

type instrument struct {
	name string
	unit string
	desc string
	// bounds are histogram bucket boundaries.
	bounds []float64
}

type makeFunc func(m metric.Meter, i instrument) (any, error)

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

var (
	histogramTypes = map[reflect.Type]struct{}{
		typeOf[metric.Int64Histogram]():   {},
		typeOf[metric.Float64Histogram](): {},
	}
	makers = map[reflect.Type]makeFunc{
		typeOf[metric.Int64Counter](): func(m metric.Meter, i instrument) (any, error) {
			return m.Int64Counter(i.name, metric.WithUnit(i.unit), metric.WithDescription(i.desc))
		},
		typeOf[metric.Int64UpDownCounter](): func(m metric.Meter, i instrument) (any, error) {
			return m.Int64UpDownCounter(i.name, metric.WithUnit(i.unit), metric.WithDescription(i.desc))
		},
		typeOf[metric.Int64Histogram](): func(m metric.Meter, i instrument) (any, error) {
			return m.Int64Histogram(i.name,
				metric.WithUnit(i.unit),
				metric.WithDescription(i.desc),
				metric.WithExplicitBucketBoundaries(i.bounds...),
			)
		},
		typeOf[metric.Float64Counter](): func(m metric.Meter, i instrument) (any, error) {
			return m.Float64Counter(i.name, metric.WithUnit(i.unit), metric.WithDescription(i.desc))
		},
		typeOf[metric.Float64Histogram](): func(m metric.Meter, i instrument) (any, error) {
			return m.Float64Histogram(i.name,
				metric.WithUnit(i.unit),
				metric.WithDescription(i.desc),
				metric.WithExplicitBucketBoundaries(i.bounds...),
			)
		},
	}
)

// Init creates instruments for exported fields of struct pointed by s.
func Init(m metric.Meter, s any, opts InitOptions) error {
	ptr := reflect.ValueOf(s)
	if ptr.Kind() != reflect.Pointer || ptr.Elem().Kind() != reflect.Struct {
		return errors.Errorf("a pointer-to-struct expected, got %T", s)
	}
	v := ptr.Elem()

	for _, sf := range reflect.VisibleFields(v.Type()) {
		if len(sf.Index) > 1 || sf.Anonymous || !sf.IsExported() || sf.Tag.Get("autometric") == "-" {
			continue
		}
		mt, err := makeInstrument(m, sf, opts)
		if err != nil {
			return errors.Wrapf(err, "field (%s).%s", v.Type(), sf.Name)
		}
		v.FieldByIndex(sf.Index).Set(reflect.ValueOf(mt))
	}
	return nil
}

func makeInstrument(m metric.Meter, sf reflect.StructField, opts InitOptions) (any, error) {
	mk, ok := makers[sf.Type]
	if !ok {
		return nil, errors.Errorf("unsupported type %v", sf.Type)
	}

	i := instrument{
		name: opts.Prefix + snakeCase(sf.Name),
		unit: sf.Tag.Get("unit"),
		desc: sf.Tag.Get("description"),
	}
	if name, ok := sf.Tag.Lookup("name"); ok {
		i.name = opts.Prefix + name
	}
	if b, ok := sf.Tag.Lookup("boundaries"); ok {
		if _, ok := histogramTypes[sf.Type]; !ok {
			return nil, errors.Errorf("boundaries tag is allowed only on histograms, got %v", sf.Type)
		}
		for _, s := range strings.Split(b, ",") {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, errors.Wrap(err, "parse boundaries")
			}
			i.bounds = append(i.bounds, f)
		}
	}
	return mk(m, i)
}
