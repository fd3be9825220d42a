package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryoscan/cryoscan/pkg/catalog"
)

func TestParseFormat(t *testing.T) {
	for _, valid := range []string{"table", "json", "yaml", "YAML", ""} {
		_, err := ParseFormat(valid)
		assert.NoError(t, err, valid)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestYAMLFormatterRecords(t *testing.T) {
	records := []catalog.Record{{
		Variable:    "lithk",
		IceSheet:    "AIS",
		Institution: "AWI",
		ModelName:   "PISM1",
		Experiment:  "exp05",
		URL:         "gs://ismip6/Projection-AIS/AWI/PISM1/exp05/lithk_AIS_AWI_PISM1_exp05.nc",
		SizeBytes:   2048,
	}}

	var buf bytes.Buffer
	require.NoError(t, (&YAMLFormatter{}).Format(&buf, records))

	out := buf.String()
	assert.Contains(t, out, "variable: lithk")
	assert.Contains(t, out, "ice_sheet: AIS")
}

func TestJSONFormatterRecords(t *testing.T) {
	records := []catalog.Record{{Variable: "lithk", IceSheet: "AIS"}}

	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{Indent: "  "}).Format(&buf, records))
	assert.Contains(t, buf.String(), `"variable": "lithk"`)
}

func TestRecordsTableShape(t *testing.T) {
	records := []catalog.Record{
		{Variable: "lithk", IceSheet: "AIS", Institution: "AWI", ModelName: "PISM1", Experiment: "exp05", SizeBytes: 5 << 20},
		{Variable: "orog", IceSheet: "GIS", Institution: "JPL", ModelName: "ISSM", Experiment: "ctrl", SizeBytes: 100},
	}

	data := Records(records)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, "AWI/PISM1", data.Rows[0][1])
	assert.Equal(t, "5.0 MB", data.Rows[0][4])
	assert.Equal(t, "100 B", data.Rows[1][4])
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "512 B", HumanSize(512))
	assert.Equal(t, "2.0 KB", HumanSize(2048))
	assert.Equal(t, "1.5 GB", HumanSize(3<<29))
}
