package printer

import (
	"testing"

	"github.com/HerbHall/printwatch/pkg/models"
)

func TestDetectProfile(t *testing.T) {
	tests := []struct {
		name        string
		description string
		model       string
		supply      string
		want        models.Profile
	}{
		{"laserjet description", "HP ETHERNET MULTI-ENVIRONMENT,ROM none,JETDIRECT,JD153,EEPROM JSI24020044,CIDATE 06/11/2020 HP LaserJet Pro M404dn", "", "", models.ProfileLaser},
		{"epson ecotank model", "EPSON Built-in Network Interface", "EPSON L6270 EcoTank", "", models.ProfileInkjet},
		{"case insensitive", "canon PIXMA g7020", "", "", models.ProfileInkjet},
		{"kyocera ecosys", "KYOCERA Document Solutions Printing System ECOSYS P2040dn", "", "", models.ProfileLaser},
		{"supply description fallback", "Generic Network Printer", "Model X", "Black Toner Cartridge", models.ProfileLaser},
		{"ink supply fallback", "Generic", "", "Black Ink", models.ProfileInkjet},
		{"ink inside word ignored", "Pink Label Printer", "", "", models.ProfileUnknown},
		{"ambiguous description falls through", "Laser and Inkjet combo", "OfficeJet Pro 9015", "", models.ProfileInkjet},
		{"description wins over model", "Brother Laser", "DeskJet", "", models.ProfileLaser},
		{"nothing matches", "Zebra ZT410", "ZT410", "Ribbon", models.ProfileUnknown},
		{"all empty", "", "", "", models.ProfileUnknown},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectProfile(tc.description, tc.model, tc.supply); got != tc.want {
				t.Errorf("DetectProfile() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestKeywordSetsDisjoint(t *testing.T) {
	seen := make(map[string]bool, len(inkjetKeywords))
	for _, kw := range inkjetKeywords {
		seen[kw] = true
	}
	for _, kw := range laserKeywords {
		if seen[kw] {
			t.Errorf("keyword %q appears in both families", kw)
		}
	}
}

func TestConsumablesFor(t *testing.T) {
	tests := []struct {
		profile models.Profile
		want    []string
	}{
		{models.ProfileLaser, []string{"black", "cyan", "magenta", "yellow", "drum"}},
		{models.ProfileInkjet, []string{"black", "cyan", "magenta", "yellow", "maintenance_box"}},
		{models.ProfileUnknown, []string{"black"}},
	}
	for _, tc := range tests {
		got := ConsumablesFor(tc.profile)
		if len(got) != len(tc.want) {
			t.Fatalf("ConsumablesFor(%q) len = %d, want %d", tc.profile, len(got), len(tc.want))
		}
		for i, c := range got {
			if c.Name != tc.want[i] {
				t.Errorf("ConsumablesFor(%q)[%d] = %q, want %q", tc.profile, i, c.Name, tc.want[i])
			}
		}
	}
}
