package jobs

import "github.com/mentorlink/mentorlink/services"

var svc *services.Registry

// Setup hands the jobs their service registry. Must run before the cron
// scheduler starts.
func Setup(registry *services.Registry) {
	svc = registry
}
