package server

import (
	"fmt"
	"math"
	"strings"
)

const wordsPerMinute = 185

// ReadingTime оценивает время чтения с точностью до полуминуты
func ReadingTime(text string) string {
	words := len(strings.Fields(text))
	seconds := int(math.Round(float64(words) * 60 / wordsPerMinute))

	if seconds < 15 {
		return "Less than 30 seconds"
	}
	if seconds < 60 {
		return fmt.Sprintf("%d seconds", seconds)
	}

	minutes, rest := seconds/60, seconds%60
	switch {
	case rest < 15:
		return fmt.Sprintf("%d minutes", minutes)
	case rest < 45:
		return fmt.Sprintf("%d min 30 sec", minutes)
	default:
		return fmt.Sprintf("%d minutes", minutes+1)
	}
}
