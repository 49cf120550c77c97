package dataset_test

import (
	"reflect"
	"testing"

	"hopper/internal/dataset"
)

func TestKeyValuesFirstSeenOrder(t *testing.T) {
	d := dataset.Dataset{
		Columns: []string{"id", "name"},
		Rows: []dataset.Row{
			{"id": "b", "name": "second"},
			{"id": "a", "name": "first"},
			{"id": "b", "name": "second again"},
			{"id": "c", "name": "third"},
		},
	}

	got := d.KeyValues("id")
	want := []string{"b", "a", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("KeyValues = %v, want %v", got, want)
	}
}

func TestKeyValuesCollapsesNulls(t *testing.T) {
	d := dataset.Dataset{
		Columns: []string{"id"},
		Rows:    []dataset.Row{{}, {"id": "x"}, {"id": ""}},
	}
	got := d.KeyValues("id")
	want := []string{"", "x"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("KeyValues = %v, want %v", got, want)
	}
}

func TestReindexSharesRowsCopiesColumns(t *testing.T) {
	rows := []dataset.Row{{"id": "1", "old": "x"}}
	d := dataset.Dataset{Columns: []string{"id", "old"}, Rows: rows}

	columns := []string{"id", "new", "old"}
	reindexed := d.Reindex(columns)

	if len(reindexed.Rows) != 1 || reindexed.Rows[0].Value("old") != "x" {
		t.Fatalf("expected shared rows, got %v", reindexed.Rows)
	}
	if !reindexed.Rows[0].IsNull("new") {
		t.Fatal("expected added column to read as null")
	}

	columns[1] = "mutated"
	if reindexed.Columns[1] != "new" {
		t.Fatalf("expected column list copied, got %v", reindexed.Columns)
	}
}

func TestSortedColumnUnion(t *testing.T) {
	got := dataset.SortedColumnUnion([]string{"zeta", "id"}, []string{"alpha", "id", "mid"})
	want := []string{"alpha", "id", "mid", "zeta"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SortedColumnUnion = %v, want %v", got, want)
	}
}

func TestHasColumn(t *testing.T) {
	d := dataset.Dataset{Columns: []string{"id", "name"}}
	if !d.HasColumn("name") {
		t.Fatal("expected name column present")
	}
	if d.HasColumn("missing") {
		t.Fatal("expected missing column absent")
	}
}

func TestRowNullSemantics(t *testing.T) {
	row := dataset.Row{"a": "value", "b": ""}
	if row.IsNull("a") {
		t.Fatal("a should not be null")
	}
	if !row.IsNull("b") {
		t.Fatal("empty string should be null")
	}
	if !row.IsNull("absent") {
		t.Fatal("absent key should be null")
	}
	if row.Value("absent") != "" {
		t.Fatal("absent key should read as empty string")
	}
}
