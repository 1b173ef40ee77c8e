package core

import (
	"math"
	"strconv"
)

// Percent maps received bytes onto [0,100]. Unknown totals report 0 rather
// than guessing.
func Percent(received, expected int64) int {
	if expected <= 0 {
		return 0
	}
	if received <= 0 {
		return 0
	}
	if received >= expected {
		return 100
	}
	return int(received * 100 / expected)
}

var suffixes = [5]string{"B", "KB", "MB", "GB", "TB"}

// HumanFileSize renders a byte count the way download UIs expect ("1.5 MB").
func HumanFileSize(size float64) string {
	if size < 1 {
		return "0 B"
	}
	base := math.Log(size) / math.Log(1024)
	value := round(math.Pow(1024, base-math.Floor(base)), .5, 2)
	suffix := suffixes[int(math.Floor(base))]
	return strconv.FormatFloat(value, 'f', -1, 64) + " " + suffix
}

func round(val float64, roundOn float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	digit := pow * val
	_, div := math.Modf(digit)
	if div >= roundOn {
		return math.Ceil(digit) / pow
	}
	return math.Floor(digit) / pow
}
