package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tollcalc/internal/config"
	"tollcalc/internal/toll"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

const edgesCSV = `id_start,id_end,distance
1001400,1001402,9.7
1001402,1001404,20.2
1001404,1001406,16.0
`

const countsCSV = `id_1,id_2,route,moto,car,rv,bus,truck
801,802,11,2,10,3,5,8
801,803,11,3,16,4,5,9
802,801,12,1,26,2,5,5
802,803,12,4,15,5,50,6
`

func newTestSession(t *testing.T) (*sdk.ClientSession, *Server) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range map[string]string{
		"edges.csv":  edgesCSV,
		"counts.csv": countsCSV,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	cfg := &config.AppConfig{DataPath: dir, ReportDir: filepath.Join(dir, "reports"), ReferenceID: 1001400}
	srv, err := NewServer(cfg, toll.DefaultSchedule(), "test")
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	ctx := context.Background()
	clientTransport, serverTransport := sdk.NewInMemoryTransports()
	if _, err := srv.mcp.Connect(ctx, serverTransport, nil); err != nil {
		t.Fatalf("server connect: %v", err)
	}
	client := sdk.NewClient(&sdk.Implementation{Name: "test-client", Version: "v0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { _ = session.Close() })
	return session, srv
}

func callText(t *testing.T, session *sdk.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()
	res, err := session.CallTool(context.Background(), &sdk.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool(%s) error = %v", name, err)
	}
	if len(res.Content) != 1 {
		t.Fatalf("CallTool(%s) returned %d content blocks", name, len(res.Content))
	}
	text, ok := res.Content[0].(*sdk.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s) content is %T, want text", name, res.Content[0])
	}
	return text.Text, res.IsError
}

func TestListTools(t *testing.T) {
	session, _ := newTestSession(t)

	res, err := session.ListTools(context.Background(), &sdk.ListToolsParams{})
	if err != nil {
		t.Fatalf("ListTools() error = %v", err)
	}

	names := make(map[string]bool)
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{
		"generate_car_matrix", "get_type_count", "get_bus_indexes", "filter_routes",
		"multiply_matrix", "time_check", "calculate_distance_matrix", "unroll_distance_matrix",
		"find_ids_within_ten_percentage_threshold", "calculate_toll_rate",
		"calculate_time_based_toll_rates", "build_report",
	} {
		if !names[want] {
			t.Errorf("tool %q not registered", want)
		}
	}
}

func TestCallTool_TypeCount(t *testing.T) {
	session, _ := newTestSession(t)

	text, isErr := callText(t, session, "get_type_count", map[string]any{"path": "counts.csv"})
	if isErr {
		t.Fatalf("get_type_count failed: %s", text)
	}

	var got map[string]int
	if err := json.Unmarshal([]byte(text), &got); err != nil {
		t.Fatalf("result is not JSON: %v\n%s", err, text)
	}
	if got["low"] != 2 || got["medium"] != 1 || got["high"] != 1 {
		t.Errorf("get_type_count = %v", got)
	}
}

func TestCallTool_Threshold(t *testing.T) {
	session, _ := newTestSession(t)

	text, isErr := callText(t, session, "find_ids_within_ten_percentage_threshold", map[string]any{"path": "edges.csv"})
	if isErr {
		t.Fatalf("threshold tool failed: %s", text)
	}
	var ids []int64
	if err := json.Unmarshal([]byte(text), &ids); err != nil {
		t.Fatalf("result is not JSON: %v\n%s", err, text)
	}
	// Reference 1001400 unrolls to [19.4, 0, 0]: average 6.47, band [5.82, 7.11].
	// No other row lands in that band.
	if len(ids) != 0 {
		t.Errorf("threshold ids = %v, want none", ids)
	}
}

func TestCallTool_ThresholdExplicitZeroReference(t *testing.T) {
	session, _ := newTestSession(t)

	text, isErr := callText(t, session, "find_ids_within_ten_percentage_threshold", map[string]any{
		"path":         "edges.csv",
		"reference_id": 0,
	})
	if !isErr {
		t.Fatalf("expected id 0 to be looked up and missing, got %s", text)
	}
	if !strings.Contains(text, "reference not found: id 0") {
		t.Errorf("error text = %q, want reference not found for id 0", text)
	}
}

func TestCallTool_ErrorIsReported(t *testing.T) {
	session, _ := newTestSession(t)

	text, isErr := callText(t, session, "get_bus_indexes", map[string]any{"path": "edges.csv"})
	if !isErr {
		t.Fatalf("expected tool error, got %s", text)
	}
	if !strings.Contains(text, "missing column") {
		t.Errorf("error text = %q, want missing column", text)
	}
}

func TestCallTool_BuildReport(t *testing.T) {
	session, srv := newTestSession(t)

	text, isErr := callText(t, session, "build_report", map[string]any{
		"counts_path": "counts.csv",
		"edges_path":  "edges.csv",
	})
	if isErr {
		t.Fatalf("build_report failed: %s", text)
	}
	entries, err := os.ReadDir(srv.cfg.ReportDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("report dir has %d files, want 3", len(entries))
	}
}

func TestSetSchedule(t *testing.T) {
	_, srv := newTestSession(t)

	s := toll.DefaultSchedule()
	s.WeekendFactor = 0.5
	srv.SetSchedule(s)
	if srv.Schedule().WeekendFactor != 0.5 {
		t.Errorf("Schedule().WeekendFactor = %v, want 0.5", srv.Schedule().WeekendFactor)
	}
}
