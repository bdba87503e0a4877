package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"fitgrid/internal/models"
)

// TestClient provides methods for testing the API
type TestClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewTestClient creates a new test client
func NewTestClient(baseURL string) *TestClient {
	return &TestClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// makeRequest makes an HTTP request and returns the response
func (c *TestClient) makeRequest(t *testing.T, method, path string, body interface{}) *http.Response {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reqBody)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}

	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response, want int) T {
	t.Helper()
	defer resp.Body.Close()

	var out T
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status %d, got %d. Body: %s", want, resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return out
}

// CreateRoom creates a room
func (c *TestClient) CreateRoom(t *testing.T, name string, capacity int) *models.Room {
	req := map[string]interface{}{"name": name, "capacity": capacity}
	resp := c.makeRequest(t, "POST", "/api/rooms", req)
	room := decodeBody[models.Room](t, resp, http.StatusCreated)
	return &room
}

// CreateInstructor creates an instructor
func (c *TestClient) CreateInstructor(t *testing.T, firstName, lastName string) *models.Instructor {
	req := map[string]interface{}{"first_name": firstName, "last_name": lastName}
	resp := c.makeRequest(t, "POST", "/api/instructors", req)
	ins := decodeBody[models.Instructor](t, resp, http.StatusCreated)
	return &ins
}

// CreateActivityType creates an activity type
func (c *TestClient) CreateActivityType(t *testing.T, name string) *models.ActivityType {
	req := map[string]interface{}{"name": name}
	resp := c.makeRequest(t, "POST", "/api/activity-types", req)
	at := decodeBody[models.ActivityType](t, resp, http.StatusCreated)
	return &at
}

// CreateSeries creates a class series and returns it with its generated schedule
func (c *TestClient) CreateSeries(t *testing.T, req *models.CreateSeriesRequest) *models.ClassSeries {
	resp := c.makeRequest(t, "POST", "/api/series", req)
	series := decodeBody[models.ClassSeries](t, resp, http.StatusCreated)
	return &series
}

// DeleteSeries deletes a series
func (c *TestClient) DeleteSeries(t *testing.T, seriesID int64) {
	resp := c.makeRequest(t, "DELETE", fmt.Sprintf("/api/series/%d", seriesID), nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 204, got %d. Body: %s", resp.StatusCode, string(body))
	}
}

// ListClassesBySeries lists the occurrences that belong to a series
func (c *TestClient) ListClassesBySeries(t *testing.T, seriesID int64) []models.ClassOccurrence {
	path := fmt.Sprintf("/api/classes?series_id=%d", seriesID)
	resp := c.makeRequest(t, "GET", path, nil)
	return decodeBody[[]models.ClassOccurrence](t, resp, http.StatusOK)
}

// CreateClass creates a standalone class occurrence
func (c *TestClient) CreateClass(t *testing.T, req *models.CreateOccurrenceRequest) *models.ClassOccurrence {
	resp := c.makeRequest(t, "POST", "/api/classes", req)
	occ := decodeBody[models.ClassOccurrence](t, resp, http.StatusCreated)
	return &occ
}

// ChangeClassStatus moves a class through its lifecycle
func (c *TestClient) ChangeClassStatus(t *testing.T, classID int64, status string) *models.ClassOccurrence {
	req := models.ChangeStatusRequest{Status: status}
	resp := c.makeRequest(t, "PATCH", fmt.Sprintf("/api/classes/%d/status", classID), req)
	occ := decodeBody[models.ClassOccurrence](t, resp, http.StatusOK)
	return &occ
}

// CreateBooking books a user onto a class
func (c *TestClient) CreateBooking(t *testing.T, classID int64, userName string) *models.BookingResponse {
	req := models.CreateBookingRequest{ClassID: classID, UserName: userName}
	resp := c.makeRequest(t, "POST", "/api/bookings", req)
	booking := decodeBody[models.BookingResponse](t, resp, http.StatusCreated)
	return &booking
}

// TryCreateBooking books a user onto a class and reports the status code
func (c *TestClient) TryCreateBooking(t *testing.T, classID int64, userName string) int {
	req := models.CreateBookingRequest{ClassID: classID, UserName: userName}
	resp := c.makeRequest(t, "POST", "/api/bookings", req)
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode
}

// CancelBooking cancels a booking by id
func (c *TestClient) CancelBooking(t *testing.T, bookingID int64) *models.CancelBookingResponse {
	req := models.CancelBookingRequest{BookingID: &bookingID}
	resp := c.makeRequest(t, "PATCH", "/api/bookings/cancel", req)
	out := decodeBody[models.CancelBookingResponse](t, resp, http.StatusOK)
	return &out
}

// GetSchedule fetches the public schedule
func (c *TestClient) GetSchedule(t *testing.T) []models.ScheduleItem {
	resp := c.makeRequest(t, "GET", "/api/schedule", nil)
	return decodeBody[[]models.ScheduleItem](t, resp, http.StatusOK)
}
