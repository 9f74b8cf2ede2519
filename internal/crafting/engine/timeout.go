package engine

// Timeout parameters for an executor working through a plan.
const (
	BaseTimeoutSec       = 120
	TimeoutPerDepthSec   = 60
	ScavengingMultiplier = 1.5
)

// CalculateTimeout returns the seconds an executor should be allowed for a
// task unrolled to chosenDepth. Tasks with missing resources get extra time
// for gathering.
func CalculateTimeout(chosenDepth int, hasMissingResources bool) int {
	timeout := float64(BaseTimeoutSec + chosenDepth*TimeoutPerDepthSec)
	if hasMissingResources {
		timeout *= ScavengingMultiplier
	}
	return int(timeout)
}
