package appointments

import (
	"context"
	"errors"
	"testing"

	"github.com/flowdoc/clinic-platform/internal/patients"
)

func seedRepo(t *testing.T) (*InMemoryRepository, *patients.Patient) {
	t.Helper()
	patientRepo := patients.NewInMemoryRepository("PSI")
	p, err := patientRepo.Create(context.Background(), &patients.CreateRequest{
		FirstName: "Ana", LastName: "García", DateOfBirth: "1990-05-15", Gender: "Femenino",
	})
	if err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	return NewInMemoryRepository(patientRepo), p
}

func TestCreateForcesScheduledAndJoinsPatient(t *testing.T) {
	repo, p := seedRepo(t)

	a, err := repo.Create(context.Background(), &CreateRequest{
		PatientID:   p.ID,
		ClinicianID: "c1",
		Date:        "2024-03-11",
		StartTime:   "09:00",
		EndTime:     "09:50",
		Type:        TypeConsultation,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if a.Status != StatusScheduled {
		t.Errorf("status = %s, want scheduled", a.Status)
	}
	if a.Patient == nil || a.Patient.ID != p.ID {
		t.Error("expected joined patient snapshot")
	}
	if a.ID == "" {
		t.Error("expected store-assigned id")
	}
}

func TestCreateWithUnresolvedPatientDegrades(t *testing.T) {
	repo, _ := seedRepo(t)

	a, err := repo.Create(context.Background(), &CreateRequest{
		PatientID:   "no-such-patient",
		ClinicianID: "c1",
		Date:        "2024-03-11",
		StartTime:   "10:00",
		EndTime:     "10:30",
		Type:        TypeFollowUp,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if a.Patient != nil {
		t.Error("expected nil snapshot for unresolved patient reference")
	}
	if a.PatientLabel() != "unknown" {
		t.Errorf("PatientLabel() = %q, want unknown", a.PatientLabel())
	}
}

func TestListOrderedByDateThenStart(t *testing.T) {
	repo, p := seedRepo(t)
	ctx := context.Background()

	mk := func(date, start, end string) {
		t.Helper()
		if _, err := repo.Create(ctx, &CreateRequest{
			PatientID: p.ID, ClinicianID: "c1", Date: date, StartTime: start, EndTime: end, Type: TypeTherapy,
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	mk("2024-03-12", "09:00", "09:30")
	mk("2024-03-11", "15:00", "15:30")
	mk("2024-03-11", "09:00", "09:30")

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	if list[0].Date != "2024-03-11" || list[0].StartTime != "09:00" {
		t.Errorf("first = %s %s", list[0].Date, list[0].StartTime)
	}
	if list[2].Date != "2024-03-12" {
		t.Errorf("last = %s", list[2].Date)
	}
}

func TestListStableForEqualKeys(t *testing.T) {
	repo, p := seedRepo(t)
	ctx := context.Background()

	first, _ := repo.Create(ctx, &CreateRequest{
		PatientID: p.ID, ClinicianID: "c1", Date: "2024-03-11", StartTime: "09:00", EndTime: "09:30", Type: TypeTherapy,
	})
	second, _ := repo.Create(ctx, &CreateRequest{
		PatientID: p.ID, ClinicianID: "c2", Date: "2024-03-11", StartTime: "09:00", EndTime: "09:45", Type: TypeTherapy,
	})

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if list[0].ID != first.ID || list[1].ID != second.ID {
		t.Error("equal sort keys must preserve insertion order")
	}
}

func TestUpdateStatusOnlyTouchesStatus(t *testing.T) {
	repo, p := seedRepo(t)
	ctx := context.Background()

	a, _ := repo.Create(ctx, &CreateRequest{
		PatientID: p.ID, ClinicianID: "c1", Date: "2024-03-11", StartTime: "09:00", EndTime: "09:50", Type: TypeConsultation,
	})

	if err := repo.UpdateStatus(ctx, a.ID, StatusConfirmed); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	got, err := repo.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != StatusConfirmed {
		t.Errorf("status = %s, want confirmed", got.Status)
	}
	if got.StartTime != "09:00" || got.Type != TypeConsultation {
		t.Error("UpdateStatus must not touch other fields")
	}

	if err := repo.UpdateStatus(ctx, a.ID, Status("bogus")); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("bogus status: err = %v, want ErrInvalidStatus", err)
	}
	if err := repo.UpdateStatus(ctx, "missing", StatusConfirmed); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("missing id: err = %v, want ErrAppointmentNotFound", err)
	}
}

func TestDeleteRemovesPermanently(t *testing.T) {
	repo, p := seedRepo(t)
	ctx := context.Background()

	a, _ := repo.Create(ctx, &CreateRequest{
		PatientID: p.ID, ClinicianID: "c1", Date: "2024-03-11", StartTime: "09:00", EndTime: "09:50", Type: TypeConsultation,
	})

	if err := repo.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, a.ID); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("after delete: err = %v, want ErrAppointmentNotFound", err)
	}
	if err := repo.Delete(ctx, a.ID); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("double delete: err = %v, want ErrAppointmentNotFound", err)
	}
}
