package core

// DaysPerYear is the length of a libyear in days.
const DaysPerYear = 365.25

const hoursPerDay = 24

// Libyears returns the time between the publish dates of current and latest
// in years. It is zero when either release or its publish date is unknown,
// and never negative.
func Libyears(current, latest *Release) float64 {
	if !current.HasPublishDate() || !latest.HasPublishDate() {
		return 0
	}
	days := latest.Published.Sub(current.Published).Hours() / hoursPerDay
	if days <= 0 {
		return 0
	}
	return days / DaysPerYear
}
