package usage

import "time"

const periodLength = 30 * 24 * time.Hour

func defaultUsage() Usage {
	return Usage{
		Plan:     "free",
		Limit:    25,
		Used:     0,
		ResetsAt: time.Now().UTC().Add(periodLength),
	}
}
