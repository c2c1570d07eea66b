package scheduler

import (
	"context"

	dashboardapp "github.com/labstock/backend/internal/application/dashboard"
	"github.com/labstock/backend/internal/infrastructure/config"
)

// ExpiryScanJobName names the expiry scan in Status and RunNow.
const ExpiryScanJobName = "expiry_scan"

// ExpiryScanner runs one expiry pass.
type ExpiryScanner interface {
	Scan(ctx context.Context) (*dashboardapp.ScanResult, error)
}

// ExpiryScanJob wraps the scanner as an interval job.
func ExpiryScanJob(scanner ExpiryScanner, cfg config.SchedulerConfig) Job {
	return Job{
		Name:     ExpiryScanJobName,
		Interval: cfg.ExpiryScanInterval,
		Timeout:  cfg.JobTimeout,
		Run: func(ctx context.Context) error {
			_, err := scanner.Scan(ctx)
			return err
		},
	}
}
