package autometric

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestInit(t *testing.T) {
	ctx := context.Background()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := mp.Meter("test-meter")

	var test struct {
		fmt.Stringer
		private metric.Int64Counter
		Skip    metric.Int64Counter `autometric:"-"`

		Files    metric.Int64Counter     `description:"Number of files"`
		InFlight metric.Int64UpDownCounter
		Sizes    metric.Int64Histogram   `unit:"By" boundaries:"10, 100"`
		Ratio    metric.Float64Counter   `name:"ratio_total"`
		Duration metric.Float64Histogram `unit:"s"`
	}
	const prefix = "test."
	require.NoError(t, Init(meter, &test, InitOptions{Prefix: prefix}))

	require.Nil(t, test.private)
	require.Nil(t, test.Skip)

	test.Files.Add(ctx, 1)
	test.InFlight.Add(ctx, 1)
	test.Sizes.Record(ctx, 50)
	test.Ratio.Add(ctx, 0.5)
	test.Duration.Record(ctx, 1)

	var data metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &data))

	type info struct {
		Name        string
		Description string
		Unit        string
	}
	var got []info
	for _, scope := range data.ScopeMetrics {
		for _, m := range scope.Metrics {
			got = append(got, info{Name: m.Name, Description: m.Description, Unit: m.Unit})
		}
	}
	require.Equal(t, []info{
		{Name: prefix + "files", Description: "Number of files"},
		{Name: prefix + "in_flight"},
		{Name: prefix + "sizes", Unit: "By"},
		{Name: prefix + "ratio_total"},
		{Name: prefix + "duration", Unit: "s"},
	}, got)
}

func TestInitErrors(t *testing.T) {
	type (
		JustStruct struct{}

		Unsupported struct {
			Gauge metric.Int64ObservableGauge
		}
		BoundariesOnCounter struct {
			C metric.Int64Counter `boundaries:"1"`
		}
		BadBoundaries struct {
			H metric.Float64Histogram `boundaries:"1,foo"`
		}
	)

	for i, tt := range []struct {
		s   any
		err string
	}{
		{0, "a pointer-to-struct expected, got int"},
		{JustStruct{}, "a pointer-to-struct expected, got autometric.JustStruct"},
		{&Unsupported{}, "field (autometric.Unsupported).Gauge: unsupported type metric.Int64ObservableGauge"},
		{&BoundariesOnCounter{}, "field (autometric.BoundariesOnCounter).C: boundaries tag is allowed only on histograms, got metric.Int64Counter"},
		{&BadBoundaries{}, `field (autometric.BadBoundaries).H: parse boundaries: strconv.ParseFloat: parsing "foo": invalid syntax`},
	} {
		t.Run(fmt.Sprintf("Test%d", i+1), func(t *testing.T) {
			mp := sdkmetric.NewMeterProvider()
			require.EqualError(t, Init(mp.Meter("test-meter"), tt.s, InitOptions{}), tt.err)
		})
	}
}
