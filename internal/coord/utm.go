// Package coord converts geographic degrees to the metric projection
// the pipeline quantizes: WGS84 latitude/longitude to UTM
// (zone, band, easting, northing). KML coordinates arrive as degrees
// while shapefile coordinates are assumed already in UTM metres, so
// this conversion is what lets a KML contour share the same compressed
// coordinate space as a shapefile one.
package coord

import "math"

// DegreeToUTM projects a WGS84 (lat, lon) pair to UTM (zone, band,
// easting, northing). All Placemarks in one input file are assumed to
// land in the same zone/band; the driver does not attempt to merge
// distinct zones.
func DegreeToUTM(lat, lon float64) (zone int, band byte, easting, northing float64) {
	zoneF := math.Floor(lon/6.0 + 31.0)
	band = latToUTMBand(lat)

	deg := math.Pi / 180.0
	latRad := lat * deg
	lonRad := lon * deg
	centralMeridian := (6.0*zoneF - 183.0) * deg

	cosLat := math.Cos(latRad)
	sinTerm := math.Sin(lonRad - centralMeridian)

	logTerm := 0.5 * math.Log(
		(1.0+cosLat*sinTerm)/(1.0-cosLat*sinTerm),
	)

	const e2 = 0.0820944379 * 0.0820944379
	easting = logTerm * 0.9996 * 6399593.62 /
		math.Sqrt(1.0+e2*cosLat*cosLat) *
		(1.0 + e2/2.0*logTerm*logTerm*cosLat*cosLat/3.0) +
		500000.0
	easting = math.Round(easting*100.0) * 0.01

	const e2n = 0.006739496742
	northing = (math.Atan(math.Tan(latRad)/math.Cos(lonRad-centralMeridian)) - latRad) *
		0.9996 * 6399593.625 / math.Sqrt(1.0+e2n*cosLat*cosLat) *
		(1.0 + e2n/2.0*logTerm*logTerm*cosLat*cosLat) +
		0.9996*6399593.625*(latRad-0.005054622556*(latRad+math.Sin(2.0*latRad)/2.0)+
			4.258201531e-05*(3.0*(latRad+math.Sin(2.0*latRad)/2.0)+math.Sin(2.0*latRad)*cosLat*cosLat)/4.0-
			1.674057895e-07*(5.0*(3.0*(latRad+math.Sin(2.0*latRad)/2.0)+math.Sin(2.0*latRad)*cosLat*cosLat)/4.0+
				math.Sin(2.0*latRad)*cosLat*cosLat*cosLat*cosLat)/3.0)
	if band < 'M' {
		northing += 10000000.0
	}
	northing = math.Round(northing*100.0) * 0.01

	return int(zoneF), band, easting, northing
}

func latToUTMBand(lat float64) byte {
	bands := "CDEFGHJKLMNPQRSTUVW"
	counter := -72
	for i := 0; i < len(bands); i++ {
		if lat < float64(counter) {
			return bands[i]
		}
		counter += 8
	}
	return 'X'
}
