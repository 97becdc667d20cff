package patients

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flowdoc/clinic-platform/pkg/logging"
)

func TestCreatePatient_Success(t *testing.T) {
	repo := NewInMemoryRepository("PSI")
	handler := NewHandler(repo, logging.Default())

	reqBody := CreateRequest{
		FirstName:   "Ana",
		LastName:    "García",
		DateOfBirth: "1990-05-15",
		Gender:      "Femenino",
		Email:       "ana@example.com",
	}
	body, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPost, "/patients", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, w.Code)
	}

	var p Patient
	if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if p.FirstName != reqBody.FirstName {
		t.Errorf("first name = %q, want %q", p.FirstName, reqBody.FirstName)
	}
	if p.MedicalRecordNumber == "" {
		t.Error("expected a generated medical record number")
	}
}

func TestCreatePatient_InvalidRequest(t *testing.T) {
	repo := NewInMemoryRepository("PSI")
	handler := NewHandler(repo, logging.Default())

	body, _ := json.Marshal(CreateRequest{FirstName: "", LastName: "García", DateOfBirth: "1990-05-15"})
	req := httptest.NewRequest(http.MethodPost, "/patients", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestListPatients(t *testing.T) {
	repo := NewInMemoryRepository("PSI")
	handler := NewHandler(repo, logging.Default())

	if _, err := repo.Create(httptest.NewRequest(http.MethodGet, "/", nil).Context(), &CreateRequest{
		FirstName: "Ana", LastName: "García", DateOfBirth: "1990-05-15",
	}); err != nil {
		t.Fatalf("seed create failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/patients", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp ListPatientsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 1 || len(resp.Patients) != 1 {
		t.Errorf("count = %d, patients = %d, want 1", resp.Count, len(resp.Patients))
	}
}
