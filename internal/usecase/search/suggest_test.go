package search

import (
	"context"
	"reflect"
	"testing"

	"github.com/campus-cloud/coursedex/internal/domain/entity"
)

func TestSuggestions_DistinctFirstSeen(t *testing.T) {
	svc := New(&mockRepo{entities: map[entity.Type][]entity.Entity{
		entity.TypeCourse: {
			{ID: "c1", Type: entity.TypeCourse, Title: "Golang Basics"},
			{ID: "c2", Type: entity.TypeCourse, Title: "Advanced Golang"},
			{ID: "c3", Type: entity.TypeCourse, Title: "Go Further", Tags: []string{"golang-tips"}},
		},
	}})

	got, err := svc.Suggestions(context.Background(), entity.TypeCourse, "gol", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// "golang" appears twice but is reported once, in first-seen order.
	want := []string{"golang", "golang-tips"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSuggestions_RespectsLimit(t *testing.T) {
	svc := New(&mockRepo{entities: map[entity.Type][]entity.Entity{
		entity.TypeCourse: {
			{ID: "c1", Type: entity.TypeCourse, Title: "testing tested tester testable"},
		},
	}})

	got, err := svc.Suggestions(context.Background(), entity.TypeCourse, "test", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 suggestions, got %v", got)
	}
}

func TestSuggestions_SkipsShortTokens(t *testing.T) {
	svc := New(&mockRepo{entities: map[entity.Type][]entity.Entity{
		entity.TypeCourse: {
			{ID: "c1", Type: entity.TypeCourse, Title: "go going"},
		},
	}})

	got, err := svc.Suggestions(context.Background(), entity.TypeCourse, "go", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// "go" is below the minimum token length; only "going" qualifies.
	want := []string{"going"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSuggestions_EmptyQuery(t *testing.T) {
	svc := newFixtureService()

	got, err := svc.Suggestions(context.Background(), entity.TypeCourse, "  ", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no suggestions for blank query, got %v", got)
	}
}

func TestSuggestions_CaseInsensitive(t *testing.T) {
	svc := newFixtureService()

	got, err := svc.Suggestions(context.Background(), entity.TypeCourse, "GOLANG", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) == 0 {
		t.Error("expected suggestions for uppercase query")
	}
}
