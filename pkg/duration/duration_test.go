package duration

import (
	"testing"
	"time"
)

func TestAnnouncementInterval(t *testing.T) {
	t.Parallel()
	if Announcement != 600*time.Millisecond {
		t.Errorf("Announcement = %v, want 600ms", Announcement)
	}
}

func TestRetryBounds(t *testing.T) {
	t.Parallel()
	if RetryFast >= RetryMax {
		t.Errorf("RetryFast (%v) must be below RetryMax (%v)", RetryFast, RetryMax)
	}
}

func TestShutdownShorterThanWrite(t *testing.T) {
	t.Parallel()
	if MetricsShutdown > MetricsWrite {
		t.Errorf("MetricsShutdown (%v) > MetricsWrite (%v)", MetricsShutdown, MetricsWrite)
	}
}
