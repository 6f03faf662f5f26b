package game

import "time"

// Points computes the award for a correct answer submitted elapsed time
// after the question opened. Points decay linearly with time:
//
//	remaining = max(0, window - elapsed)
//	points    = floor(remaining / divisor) + bonus
//
// An answer at or past the window boundary still closes the question but
// scores zero, bonus included. Points are never negative and wrong answers
// carry no penalty (they simply never reach this function).
func Points(elapsed, window, divisor time.Duration, bonus int) int {
	remaining := window - elapsed
	if remaining <= 0 {
		return 0
	}
	if divisor <= 0 {
		return bonus
	}

	return int(remaining/divisor) + bonus
}
