package health

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestStatusWithoutDatabase(t *testing.T) {
	status, ok := NewService(nil).Status(context.Background())
	if !ok || status["storage"] != "memory" {
		t.Fatalf("unexpected status: %v %v", status, ok)
	}
}

func TestStatusReportsPingFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	status, ok := NewService(db).Status(context.Background())
	if ok || status["ok"] != false || status["database"] != "connection refused" {
		t.Fatalf("unexpected status: %v %v", status, ok)
	}
}

func TestStatusHealthyDatabase(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	mock.ExpectPing()

	status, ok := NewService(db).Status(context.Background())
	if !ok || status["database"] != "ok" {
		t.Fatalf("unexpected status: %v %v", status, ok)
	}
}
