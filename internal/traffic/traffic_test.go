package traffic

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"tollcalc/internal/matrix"
	"tollcalc/internal/table"
)

func carRelation(cars ...float64) *table.Relation {
	rel := table.New(ColID1, ColID2, ColCar)
	for i, c := range cars {
		var v any = c
		if math.IsNaN(c) {
			v = nil
		}
		rel.Append(int64(100+i), int64(200+i), v)
	}
	return rel
}

func TestGenerateCarMatrix(t *testing.T) {
	rel := table.New(ColID1, ColID2, ColCar)
	rel.Append(int64(1), int64(1), 5.0)
	rel.Append(int64(1), int64(2), 6.0)
	rel.Append(int64(2), int64(1), 7.0)
	rel.Append(int64(2), int64(2), 8.0)

	m, err := GenerateCarMatrix(rel)
	if err != nil {
		t.Fatalf("GenerateCarMatrix() error = %v", err)
	}

	want := [][]float64{{0, 6}, {7, 0}}
	if got := m.Dense(); !reflect.DeepEqual(got, want) {
		t.Errorf("GenerateCarMatrix() = %v, want %v", got, want)
	}
}

func TestGenerateCarMatrix_MissingColumn(t *testing.T) {
	rel := table.New(ColID1, ColID2)
	if _, err := GenerateCarMatrix(rel); !errors.Is(err, table.ErrMissingColumn) {
		t.Errorf("expected ErrMissingColumn, got %v", err)
	}
}

func TestGetTypeCount(t *testing.T) {
	counts, err := GetTypeCount(carRelation(10, 16, 26, 15, 25))
	if err != nil {
		t.Fatalf("GetTypeCount() error = %v", err)
	}

	want := []CategoryCount{
		{Category: "high", Count: 1},
		{Category: "low", Count: 2},
		{Category: "medium", Count: 2},
	}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("GetTypeCount() = %v, want %v", counts, want)
	}
}

func TestGetTypeCount_UnknownFallback(t *testing.T) {
	counts, err := GetTypeCount(carRelation(30, math.NaN()))
	if err != nil {
		t.Fatalf("GetTypeCount() error = %v", err)
	}
	got := CountsByCategory(counts)
	if got["unknown"] != 1 || got["high"] != 1 || len(got) != 2 {
		t.Errorf("CountsByCategory() = %v, want high=1 unknown=1", got)
	}
}

func TestCategorize_Boundaries(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{-3, "low"},
		{15, "low"},
		{15.0001, "medium"},
		{25, "medium"},
		{25.5, "high"},
		{math.NaN(), "unknown"},
	}
	for _, tt := range tests {
		if got := Categorize(tt.value, CarBands); got != tt.want {
			t.Errorf("Categorize(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestGetBusIndexes(t *testing.T) {
	rel := table.New(ColBus)
	for _, v := range []float64{5, 5, 5, 50} {
		rel.Append(v)
	}

	got, err := GetBusIndexes(rel)
	if err != nil {
		t.Fatalf("GetBusIndexes() error = %v", err)
	}
	if want := []int{3}; !reflect.DeepEqual(got, want) {
		t.Errorf("GetBusIndexes() = %v, want %v", got, want)
	}
}

func TestGetBusIndexes_EmptyAndTypeMismatch(t *testing.T) {
	got, err := GetBusIndexes(table.New(ColBus))
	if err != nil || len(got) != 0 {
		t.Errorf("GetBusIndexes(empty) = %v, %v; want [], nil", got, err)
	}

	rel := table.New(ColBus)
	rel.Append("many")
	if _, err := GetBusIndexes(rel); !errors.Is(err, table.ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestFilterRoutes(t *testing.T) {
	rel := table.New(ColRoute, ColTruck)
	rel.Append("B", 5.0)
	rel.Append("A", 8.0)
	rel.Append("B", 6.0)
	rel.Append("A", 9.0)
	rel.Append("C", 7.0)

	got, err := FilterRoutes(rel)
	if err != nil {
		t.Fatalf("FilterRoutes() error = %v", err)
	}
	if want := []any{"A"}; !reflect.DeepEqual(got, want) {
		t.Errorf("FilterRoutes() = %v, want %v", got, want)
	}
}

func TestFilterRoutes_NumericKeys(t *testing.T) {
	rel, err := table.FromRows([][]string{
		{ColRoute, ColTruck},
		{"11", "10"},
		{"9", "8"},
		{"10", "9"},
		{"2", "3"},
		{"", "20"},
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := FilterRoutes(rel)
	if err != nil {
		t.Fatalf("FilterRoutes() error = %v", err)
	}
	if want := []any{int64(9), int64(10), int64(11)}; !reflect.DeepEqual(got, want) {
		t.Errorf("FilterRoutes() = %v, want %v", got, want)
	}
}

func TestFilterRoutes_MixedKeysSortAsText(t *testing.T) {
	rel := table.New(ColRoute, ColTruck)
	rel.Append(int64(10), 8.0)
	rel.Append("9A", 8.0)
	rel.Append(int64(9), 8.0)

	got, err := FilterRoutes(rel)
	if err != nil {
		t.Fatalf("FilterRoutes() error = %v", err)
	}
	if want := []any{int64(10), int64(9), "9A"}; !reflect.DeepEqual(got, want) {
		t.Errorf("FilterRoutes() = %v, want %v", got, want)
	}
}

func TestMultiplyMatrix(t *testing.T) {
	m := matrix.New([]int64{1, 2}, []int64{1, 2})
	m.Set(0, 0, 20)
	m.Set(0, 1, 21)
	m.Set(1, 0, 7.3)

	out := MultiplyMatrix(m)

	tests := []struct {
		i, j int
		want float64
	}{
		{0, 0, 25.0},
		{0, 1, 15.8},
		{1, 0, 9.1},
	}
	for _, tt := range tests {
		got, ok := out.At(tt.i, tt.j)
		if !ok || got != tt.want {
			t.Errorf("MultiplyMatrix() cell(%d,%d) = %v, want %v", tt.i, tt.j, got, tt.want)
		}
	}
	if _, ok := out.At(1, 1); ok {
		t.Error("absent cell should stay absent")
	}
	if v, _ := m.At(0, 0); v != 20 {
		t.Errorf("REGRESSION: MultiplyMatrix mutated its input, cell(0,0) = %v", v)
	}
}

func TestAdjustValue_NotIdempotent(t *testing.T) {
	once := AdjustValue(24)
	twice := AdjustValue(once)
	if once != 18.0 || twice != 22.5 {
		t.Errorf("AdjustValue(24) = %v then %v, want 18 then 22.5", once, twice)
	}
}

func coverageRelation(rows [][6]any) *table.Relation {
	rel := table.New(ColID, ColID2, ColStartDay, ColStartTime, ColEndDay, ColEndTime)
	for _, r := range rows {
		rel.Append(r[:]...)
	}
	return rel
}

func TestTimeCheck(t *testing.T) {
	var rows [][6]any
	// Pair (1, 2): seven distinct start dates, every interval at least a week long.
	for _, d := range []string{"01", "02", "03", "04", "05", "06", "07"} {
		rows = append(rows, [6]any{int64(1), int64(2), "2024-01-" + d, "00:00:00", "2024-01-20", "23:59:59"})
	}
	// Pair (1, 3): weekday names never span seven full days.
	for _, d := range []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"} {
		rows = append(rows, [6]any{int64(1), int64(3), d, "00:00:00", "Sunday", "23:59:59"})
	}
	// Pair (0, 9): long interval but a single start date.
	rows = append(rows, [6]any{int64(0), int64(9), "2024-01-01", "00:00", "2024-02-01", "00:00"})

	got, err := TimeCheck(coverageRelation(rows))
	if err != nil {
		t.Fatalf("TimeCheck() error = %v", err)
	}

	want := []Coverage{
		{ID: 0, ID2: 9, Complete: false},
		{ID: 1, ID2: 2, Complete: true},
		{ID: 1, ID2: 3, Complete: false},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TimeCheck() = %v, want %v", got, want)
	}
}

func TestTimeCheck_ParseError(t *testing.T) {
	rel := coverageRelation([][6]any{
		{int64(1), int64(2), "Someday", "00:00:00", "Monday", "01:00:00"},
	})
	_, err := TimeCheck(rel)
	if !errors.Is(err, table.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestMultiplyMatrix_InfiniteInput(t *testing.T) {
	rel, err := table.FromRows([][]string{
		{ColID1, ColID2, ColCar},
		{"1", "2", "inf"},
		{"2", "1", "5"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := GenerateCarMatrix(rel); !errors.Is(err, table.ErrTypeMismatch) {
		t.Fatalf("GenerateCarMatrix() error = %v, want ErrTypeMismatch", err)
	}

	m := matrix.New([]int64{1, 2}, []int64{1, 2})
	m.Set(0, 1, math.Inf(1))
	m.Set(1, 0, 20)
	got := MultiplyMatrix(m)
	if v, _ := got.At(0, 1); !math.IsInf(v, 1) {
		t.Errorf("MultiplyMatrix() inf cell = %v, want +Inf", v)
	}
	if v, _ := got.At(1, 0); v != 25.0 {
		t.Errorf("MultiplyMatrix() 20 = %v, want 25", v)
	}
}
