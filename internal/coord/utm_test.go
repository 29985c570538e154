package coord

import (
	"math"
	"testing"
)

func TestDegreeToUTMKnownPoint(t *testing.T) {
	// Utrecht area, the Netherlands: zone 31, band U.
	zone, band, easting, northing := DegreeToUTM(52.0, 5.0)
	if zone != 31 {
		t.Errorf("zone = %d, want 31", zone)
	}
	if band != 'U' {
		t.Errorf("band = %c, want U", band)
	}
	// Reference values computed with the same series expansion.
	if easting < 600000 || easting > 650000 {
		t.Errorf("easting = %f out of plausible range", easting)
	}
	if northing < 5700000 || northing > 5800000 {
		t.Errorf("northing = %f out of plausible range", northing)
	}
}

func TestDegreeToUTMSouthernHemisphere(t *testing.T) {
	_, band, _, northing := DegreeToUTM(-33.9, 18.4)
	if band >= 'M' {
		t.Errorf("band = %c, want a southern band before M", band)
	}
	// Southern hemisphere northings carry the 10,000 km false offset.
	if northing < 6000000 {
		t.Errorf("northing = %f, want false-northing offset applied", northing)
	}
}

func TestDegreeToUTMNearbyPointsStayClose(t *testing.T) {
	_, _, e0, n0 := DegreeToUTM(52.0, 5.0)
	_, _, e1, n1 := DegreeToUTM(52.0, 5.1)
	// 0.1 degree of longitude at 52N is roughly 6.8 km.
	d := math.Hypot(e1-e0, n1-n0)
	if d < 5000 || d > 9000 {
		t.Errorf("distance = %f m, want roughly 6.8 km", d)
	}
}
