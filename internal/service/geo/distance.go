package geo

import "math"

// WGS-84 ellipsoid constants.
const (
	semiMajorAxis = 6378137.0
	flattening    = 1 / 298.257223563
	semiMinorAxis = semiMajorAxis * (1 - flattening)
)

const maxVincentyIterations = 200

// Distance returns the geodesic distance in meters between two
// points, computed with Vincenty's inverse formula on the WGS-84
// ellipsoid. For the antipodal cases where the iteration fails to
// converge it falls back to the spherical great-circle distance.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}

	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	diffLon := (lon2 - lon1) * math.Pi / 180

	u1 := math.Atan((1 - flattening) * math.Tan(phi1))
	u2 := math.Atan((1 - flattening) * math.Tan(phi2))
	sinU1, cosU1 := math.Sincos(u1)
	sinU2, cosU2 := math.Sincos(u2)

	lambda := diffLon
	var sinSigma, cosSigma, sigma, sinAlpha, cosSqAlpha, cos2SigmaM float64

	for i := 0; i < maxVincentyIterations; i++ {
		sinLambda, cosLambda := math.Sincos(lambda)

		sinSigma = math.Sqrt(
			math.Pow(cosU2*sinLambda, 2) +
				math.Pow(cosU1*sinU2-sinU1*cosU2*cosLambda, 2))
		if sinSigma == 0 {
			return 0 // coincident points
		}
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)

		sinAlpha = cosU1 * cosU2 * sinLambda / sinSigma
		cosSqAlpha = 1 - sinAlpha*sinAlpha

		if cosSqAlpha == 0 {
			cos2SigmaM = 0 // equatorial line
		} else {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cosSqAlpha
		}

		c := flattening / 16 * cosSqAlpha * (4 + flattening*(4-3*cosSqAlpha))
		prev := lambda
		lambda = diffLon + (1-c)*flattening*sinAlpha*
			(sigma+c*sinSigma*(cos2SigmaM+c*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))

		if math.Abs(lambda-prev) < 1e-12 {
			uSq := cosSqAlpha * (semiMajorAxis*semiMajorAxis - semiMinorAxis*semiMinorAxis) / (semiMinorAxis * semiMinorAxis)
			a := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
			b := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
			deltaSigma := b * sinSigma * (cos2SigmaM + b/4*
				(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
					b/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))

			return semiMinorAxis * a * (sigma - deltaSigma)
		}
	}

	return haversine(lat1, lon1, lat2, lon2)
}

// haversine is the spherical fallback, mean Earth radius.
func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371008.8

	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Pow(math.Sin(dPhi/2), 2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Pow(math.Sin(dLambda/2), 2)
	return earthRadius * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
