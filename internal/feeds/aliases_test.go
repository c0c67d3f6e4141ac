package feeds

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestLoadAliases(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".dwelltime.yaml")

	content := `
trailer_activity:
  "Shipment Number": "SHIPMENT_ID"
appointment_view:
  "SCAC": "Carrier"
order_view:
  "Appt Date": "Appointment"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	aliases := LoadAliases(path, testLogger())
	require.NotNil(t, aliases)
	assert.Equal(t, "SHIPMENT_ID", aliases.Activity["Shipment Number"])
	assert.Equal(t, "Carrier", aliases.Appointment["SCAC"])
	assert.Equal(t, "Appointment", aliases.Order["Appt Date"])
	assert.NoError(t, aliases.Validate())
}

func TestLoadAliases_MissingFile(t *testing.T) {
	aliases := LoadAliases(filepath.Join(t.TempDir(), "absent.yaml"), testLogger())
	require.NotNil(t, aliases)
	assert.Empty(t, aliases.Activity)
	assert.Empty(t, aliases.Appointment)
	assert.Empty(t, aliases.Order)
}

func TestLoadAliases_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".dwelltime.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trailer_activity: [not a map"), 0o600))

	aliases := LoadAliases(path, testLogger())
	require.NotNil(t, aliases)
	assert.Empty(t, aliases.Activity)
}

func TestAliasesValidate_UnknownTarget(t *testing.T) {
	aliases := &Aliases{
		Order: map[string]string{"Appt Date": "No Such Column"},
	}

	err := aliases.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No Such Column")
	assert.Contains(t, err.Error(), FeedOrderView)
}

func TestResolve(t *testing.T) {
	aliases := map[string]string{"Shipment Number": "SHIPMENT_ID"}

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"exact alias", "Shipment Number", "SHIPMENT_ID"},
		{"case-insensitive alias", "SHIPMENT NUMBER", "SHIPMENT_ID"},
		{"alias with padding", "  Shipment Number  ", "SHIPMENT_ID"},
		{"canonical passthrough", "VISIT TYPE", "VISIT TYPE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolve(aliases, tt.header))
		})
	}
}
