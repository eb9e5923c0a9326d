// Package omori fits the Omori-Utsu aftershock decay law to binned rate data.
package omori

import "math"

// Rate evaluates the modified Omori-Utsu law n(t) = K / (c + t)^p at elapsed
// time t. The classical 1894 form is the p = 1 special case.
func Rate(t, k, c, p float64) float64 {
	return k / math.Pow(c+t, p)
}
