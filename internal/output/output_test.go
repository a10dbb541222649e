package output

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		in      string
		want    ColorMode
		wantErr bool
	}{
		{"auto", ColorAuto, false},
		{"", ColorAuto, false},
		{"always", ColorAlways, false},
		{"never", ColorNever, false},
		{"sometimes", ColorAuto, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColorMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveColorsHonorsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, ResolveColors(ColorAuto))
	assert.True(t, ResolveColors(ColorAlways))
	assert.False(t, ResolveColors(ColorNever))
}

func TestPrinterPlain(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPrinter(&out, &errOut, false)

	p.Info("found %d scene(s)", 3)
	p.Success("done")
	p.Warning("slow")
	p.Error("broken")

	assert.Equal(t, "found 3 scene(s)\n[OK] done\n", out.String())
	assert.Equal(t, "[WARN] slow\n[ERROR] broken\n", errOut.String())
	assert.Same(t, &out, p.Status())
}

func TestStatusWriterColorsByPrefix(t *testing.T) {
	var out bytes.Buffer
	w := NewPrinter(&out, &out, true).Status()

	fmt.Fprintf(w, "failed:  42 (HTTP 500)\n")
	fmt.Fprintf(w, "found 3 scene(s)\n")
	fmt.Fprintf(w, "\nBatch summary: 1 downloaded\n")

	lines := strings.Split(out.String(), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "\x1b[31m"), "failure line is red: %q", lines[0])
	assert.Contains(t, lines[0], "failed:  42 (HTTP 500)")
	assert.Equal(t, "found 3 scene(s)", lines[1])
	assert.Empty(t, lines[2])
	assert.Contains(t, lines[3], "Batch summary: 1 downloaded")
	assert.True(t, strings.HasPrefix(lines[3], "\x1b["))
}

func TestTableRendersRows(t *testing.T) {
	var out bytes.Buffer
	tbl := NewTable(&out, "alias", "collection")
	tbl.AddRow("landsat_ot_c2_l1", "Landsat 8-9 OLI/TIRS C2 L1")
	tbl.AddRow("landsat_etm_c2_l1", "Landsat 7 ETM+ C2 L1")

	require.NoError(t, tbl.Render())
	assert.Equal(t, 2, tbl.Len())
	assert.Contains(t, out.String(), "ALIAS")
	assert.Contains(t, out.String(), "landsat_ot_c2_l1")
	assert.Contains(t, out.String(), "Landsat 7 ETM+ C2 L1")
}
