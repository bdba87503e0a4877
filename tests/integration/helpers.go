package integration

import (
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"fitgrid/internal/models"
)

const defaultBaseURL = "http://localhost:8080"

// apiBaseURL resolves the API under test, skipping the suite when no
// server is reachable. Set FITGRID_API_URL to point at a running instance.
func apiBaseURL(t *testing.T) string {
	t.Helper()

	baseURL := os.Getenv("FITGRID_API_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		t.Skipf("API not reachable at %s: %v", baseURL, err)
	}
	resp.Body.Close()
	return baseURL
}

// futureDate formats a date N days from now, as the API expects it
func futureDate(days int) string {
	return time.Now().AddDate(0, 0, days).Format("2006-01-02")
}

// uniqueName makes fixture names unique across repeated runs
func uniqueName(prefix string) string {
	return fmt.Sprintf("%s %d", prefix, time.Now().UnixNano())
}

// AssertClassExists checks that a class with the given start date is in the list
func AssertClassExists(t *testing.T, classes []models.ClassOccurrence, date string) {
	for _, class := range classes {
		if class.StartTime.Format("2006-01-02") == date {
			return
		}
	}
	t.Fatalf("Class starting on %s not found in classes list", date)
}

// AssertScheduleContains checks that a class appears on the public schedule
func AssertScheduleContains(t *testing.T, schedule []models.ScheduleItem, classID int64) *models.ScheduleItem {
	for i := range schedule {
		if schedule[i].ID == classID {
			return &schedule[i]
		}
	}
	t.Fatalf("Class %d not found on the schedule", classID)
	return nil
}

// LogTestStep logs a test step for better debugging
func LogTestStep(t *testing.T, step string, args ...interface{}) {
	t.Logf("🔹 "+step, args...)
}

// LogTestResult logs a test result
func LogTestResult(t *testing.T, result string, args ...interface{}) {
	t.Logf("✅ "+result, args...)
}
