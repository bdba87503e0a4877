package integration

import (
	"testing"

	"fitgrid/internal/models"
)

// TestSeries_DailyGeneration tests that creating a series materializes
// its occurrences out to the until date
func TestSeries_DailyGeneration(t *testing.T) {
	client := NewTestClient(apiBaseURL(t))

	LogTestStep(t, "Creating fixtures for series generation test")
	room := client.CreateRoom(t, uniqueName("Studio"), 20)
	instructor := client.CreateInstructor(t, "Marta", "Lis")
	activity := client.CreateActivityType(t, uniqueName("Pilates"))

	LogTestStep(t, "Creating a daily series for the next five days")
	series := client.CreateSeries(t, &models.CreateSeriesRequest{
		ActivityTypeID:  activity.ID,
		InstructorID:    instructor.ID,
		RoomID:          room.ID,
		StartDate:       futureDate(1),
		StartTime:       "07:30",
		DurationMinutes: 45,
		Pattern:         "DAILY",
		UntilDate:       futureDate(5),
		Capacity:        12,
	})
	defer client.DeleteSeries(t, series.ID)
	LogTestResult(t, "Series %d created", series.ID)

	classes := client.ListClassesBySeries(t, series.ID)
	if len(classes) != 5 {
		t.Fatalf("Expected 5 generated classes, got %d", len(classes))
	}
	for day := 1; day <= 5; day++ {
		AssertClassExists(t, classes, futureDate(day))
	}
	for _, class := range classes {
		if class.Status != models.StatusPlanned {
			t.Fatalf("Class %d generated with status %s, expected %s", class.ID, class.Status, models.StatusPlanned)
		}
		if class.Capacity != 12 {
			t.Fatalf("Class %d generated with capacity %d, expected 12", class.ID, class.Capacity)
		}
	}
	LogTestResult(t, "All 5 occurrences generated with expected shape")
}

// TestSeries_RoomConflictRejected tests that an overlapping standalone
// class in the same room is rejected
func TestSeries_RoomConflictRejected(t *testing.T) {
	client := NewTestClient(apiBaseURL(t))

	room := client.CreateRoom(t, uniqueName("Studio"), 20)
	instructor := client.CreateInstructor(t, "Piotr", "Kot")
	other := client.CreateInstructor(t, "Ewa", "Maj")
	activity := client.CreateActivityType(t, uniqueName("Boxing"))

	LogTestStep(t, "Creating a class and an overlapping one in the same room")
	class := client.CreateClass(t, &models.CreateOccurrenceRequest{
		ActivityTypeID:  activity.ID,
		InstructorID:    instructor.ID,
		RoomID:          room.ID,
		Date:            futureDate(2),
		StartTime:       "12:00",
		DurationMinutes: 60,
	})

	req := &models.CreateOccurrenceRequest{
		ActivityTypeID:  activity.ID,
		InstructorID:    other.ID,
		RoomID:          room.ID,
		Date:            futureDate(2),
		StartTime:       "12:30",
		DurationMinutes: 60,
	}
	resp := client.makeRequest(t, "POST", "/api/classes", req)
	resp.Body.Close()
	if resp.StatusCode != 409 {
		t.Fatalf("Expected status 409 for overlapping class, got %d", resp.StatusCode)
	}
	LogTestResult(t, "Overlap with class %d rejected", class.ID)

	// Back to back is fine
	req.StartTime = "13:00"
	backToBack := client.CreateClass(t, req)
	LogTestResult(t, "Back to back class %d accepted", backToBack.ID)
}
