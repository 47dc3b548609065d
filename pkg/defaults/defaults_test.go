package defaults_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/phishguard/phishguard/pkg/defaults"
)

func TestVersionIsSemver(t *testing.T) {
	t.Parallel()
	semverPattern := regexp.MustCompile(`^\d+\.\d+\.\d+(-[a-zA-Z0-9]+)?$`)
	if !semverPattern.MatchString(defaults.Version) {
		t.Errorf("defaults.Version (%s) is not valid semver", defaults.Version)
	}
}

func TestUserAgent(t *testing.T) {
	t.Parallel()

	if got := defaults.UserAgent(""); got != "phishguard/"+defaults.Version {
		t.Errorf("UserAgent(\"\") = %q", got)
	}
	got := defaults.UserAgent("scan")
	if !strings.HasSuffix(got, "(scan)") {
		t.Errorf("UserAgent(\"scan\") = %q, want context suffix", got)
	}
}

func TestScannerURLHasAPIPrefix(t *testing.T) {
	t.Parallel()
	if !strings.HasSuffix(defaults.ScannerURL, "/api") {
		t.Errorf("ScannerURL = %q, want /api prefix", defaults.ScannerURL)
	}
}
