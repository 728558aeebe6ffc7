package query

import (
	"reflect"
	"testing"

	"github.com/campus-cloud/coursedex/internal/domain/search/filter"
)

func TestNew_Defaults(t *testing.T) {
	q, err := New("", nil, nil, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Limit() != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, q.Limit())
	}
	if q.Offset() != 0 {
		t.Errorf("expected offset 0, got %d", q.Offset())
	}
}

func TestNew_LimitClamped(t *testing.T) {
	q, err := New("", nil, nil, 1000, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Limit() != MaxLimit {
		t.Errorf("expected limit clamped to %d, got %d", MaxLimit, q.Limit())
	}
}

func TestNew_NegativeLimit(t *testing.T) {
	if _, err := New("", nil, nil, -1, 0); err == nil {
		t.Fatal("expected error for negative limit")
	}
}

func TestNew_NegativeOffset(t *testing.T) {
	if _, err := New("", nil, nil, 0, -1); err == nil {
		t.Fatal("expected error for negative offset")
	}
}

func TestNew_EmptySortField(t *testing.T) {
	if _, err := New("", nil, []Sort{{Field: ""}}, 0, 0); err == nil {
		t.Fatal("expected error for empty sort field")
	}
}

func TestNew_TooManyFilters(t *testing.T) {
	filters := make([]filter.Filter, filter.MaxFilters+1)
	for i := range filters {
		f, err := filter.New("title", filter.Equals, "x")
		if err != nil {
			t.Fatalf("filter.New: %v", err)
		}
		filters[i] = f
	}
	if _, err := New("", filters, nil, 0, 0); err == nil {
		t.Fatal("expected error for too many filters")
	}
}

func TestTerms_LowercasedAndSplit(t *testing.T) {
	q, err := New("  Golang  Advanced Basics ", nil, nil, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"golang", "advanced", "basics"}
	if !reflect.DeepEqual(q.Terms(), want) {
		t.Errorf("expected terms %v, got %v", want, q.Terms())
	}
}

func TestTerms_Empty(t *testing.T) {
	q, err := New("   ", nil, nil, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.Terms()) != 0 {
		t.Errorf("expected no terms, got %v", q.Terms())
	}
}
