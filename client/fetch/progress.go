package fetch

import (
	"fmt"
	"log/slog"
	"time"
)

// progressReporter logs fetch progress at most once per second.
// A nil reporter is a no-op.
type progressReporter struct {
	logger      *slog.Logger
	transferred int64
	total       int64
	startTime   time.Time
	lastLog     time.Time
}

func (pr *progressReporter) add(n int) {
	if pr == nil {
		return
	}

	pr.transferred += int64(n)

	if time.Since(pr.lastLog) >= time.Second {
		pr.lastLog = time.Now()
		pr.log("fetching")
	}
}

func (pr *progressReporter) done() {
	if pr == nil {
		return
	}

	pr.log("fetch complete")
}

func (pr *progressReporter) log(msg string) {
	elapsed := time.Since(pr.startTime)
	attrs := []any{
		"elapsed", elapsed.Round(time.Millisecond),
		"transferred", pr.transferred,
		"mbps", fmt.Sprintf("%.2f", float64(pr.transferred)/elapsed.Seconds()/(1024*1024)),
	}
	if pr.total > 0 {
		attrs = append(attrs,
			"progress", fmt.Sprintf("%.1f%%", float64(pr.transferred)/float64(pr.total)*100),
			"total", pr.total,
		)
	}
	pr.logger.Info(msg, attrs...)
}
