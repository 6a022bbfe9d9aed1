package snapshot

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/lu-zhengda/ports/internal/logs"
	"github.com/lu-zhengda/ports/internal/mocks"
	"github.com/lu-zhengda/ports/internal/port"
	"github.com/lu-zhengda/ports/internal/process"
)

const lsofKey = "lsof -iTCP -sTCP:LISTEN -n -P -F pcn"

var fixedNow = time.Date(2025, time.January, 1, 14, 0, 0, 0, time.UTC)

func newEnricher(runner port.CmdRunner) *process.Enricher {
	return process.NewEnricher(runner,
		process.WithClock(func() time.Time { return fixedNow }),
		process.WithLocation(time.UTC),
	)
}

func fixedClock() time.Time { return fixedNow }

func TestTake_Pipeline(t *testing.T) {
	runner := &port.MultiMockCmdRunner{
		Responses: map[string]port.MockResponse{
			lsofKey: {Output: []byte("p200\ncpython3\nn*:8000\np100\ncnode\nn*:3000\n")},

			"ps -p 100 -o command=": {Output: []byte("node server.js\n")},
			"ps -p 100 -o lstart=":  {Output: []byte("Wed Jan  1 13:00:00 2025\n")},
			"ps -p 100 -o user=":    {Output: []byte("dev\n")},
			"ps -p 200 -o command=": {Output: []byte("python3 -m http.server 8000\n")},
			"ps -p 200 -o lstart=":  {Output: []byte("Wed Jan  1 12:00:00 2025\n")},
			"ps -p 200 -o user=":    {Output: []byte("dev\n")},
		},
	}

	snap, err := Take(context.Background(), Options{
		Scanner:  port.NewLsofScanner(runner),
		Enricher: newEnricher(runner),
		Now:      fixedClock,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(snap.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(snap.Entries))
	}
	if snap.Entries[0].Port != 3000 || snap.Entries[1].Port != 8000 {
		t.Errorf("entries not sorted by port: %v, %v", snap.Entries[0], snap.Entries[1])
	}
	if got := snap.Entries[0].AppTypeName(); got != "Node.js" {
		t.Errorf("entry 0 type: got %q, want Node.js", got)
	}
	if got := snap.Entries[1].AppTypeName(); got != "Python" {
		t.Errorf("entry 1 type: got %q, want Python", got)
	}
	if e := snap.Entries[0].Process.Elapsed; e == nil || *e != time.Hour {
		t.Errorf("entry 0 elapsed: got %v, want 1h", e)
	}
	if len(snap.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", snap.Warnings)
	}
	if !snap.TakenAt.Equal(fixedNow) {
		t.Errorf("taken_at: got %v, want %v", snap.TakenAt, fixedNow)
	}
}

func TestTake_EnrichmentWarningsAreNotFatal(t *testing.T) {
	runner := &port.MultiMockCmdRunner{
		Responses: map[string]port.MockResponse{
			lsofKey: {Output: []byte("p77\ncghost\nn*:9000\n")},
			// No ps responses: the mock returns empty output for every query.
		},
	}

	var logBuf bytes.Buffer
	snap, err := Take(context.Background(), Options{
		Scanner:  port.NewLsofScanner(runner),
		Enricher: newEnricher(runner),
		Logger:   logs.New(logs.Options{Out: &logBuf, Level: logs.LevelWarn}),
		Now:      fixedClock,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(snap.Entries) != 1 {
		t.Fatalf("entry must survive failed enrichment, got %d entries", len(snap.Entries))
	}
	e := snap.Entries[0]
	if e.Process.Name != "ghost" || e.Process.PID != 77 {
		t.Errorf("got %+v", e.Process)
	}
	if e.AppType == nil || *e.AppType != port.AppUnknown {
		t.Errorf("expected Unknown classification, got %v", e.AppTypeName())
	}
	if len(snap.Warnings) != 3 {
		t.Fatalf("expected 3 warnings, got %v", snap.Warnings)
	}
	for _, w := range snap.Warnings {
		if !strings.HasPrefix(w, "failed to get details for PID 77: ") {
			t.Errorf("unexpected warning format: %q", w)
		}
	}
	if got := strings.Count(logBuf.String(), "warning: failed to get details for PID 77"); got != 3 {
		t.Errorf("expected 3 logged warnings, got %d:\n%s", got, logBuf.String())
	}
}

type fakeScanner struct {
	entries []port.PortEntry
	err     error
}

func (f *fakeScanner) ListPorts(context.Context) ([]port.PortEntry, error) {
	return f.entries, f.err
}

func TestTake_ScannerFailureIsFatal(t *testing.T) {
	scanErr := port.SystemError("lsof failed: boom", nil)
	_, err := Take(context.Background(), Options{Scanner: &fakeScanner{err: scanErr}})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, port.ErrSystem) {
		t.Errorf("expected system error, got %v", err)
	}
	if !strings.Contains(err.Error(), "lsof failed: boom") {
		t.Errorf("error should carry the scanner message, got %q", err)
	}
}

func TestTake_Empty(t *testing.T) {
	snap, err := Take(context.Background(), Options{Scanner: &fakeScanner{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Entries) != 0 || len(snap.Warnings) != 0 {
		t.Errorf("expected empty snapshot, got %+v", snap)
	}
}

func TestTake_ExcludedProcessesAreNotQueried(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockCmdRunner(ctrl)

	runner.EXPECT().Run(gomock.Any(), "lsof", "-iTCP", "-sTCP:LISTEN", "-n", "-P", "-F", "pcn").
		Return([]byte("p1\ncpostgres\nn*:5432\np2\ncnode\nn*:3000\n"), nil)
	// Only PID 2 is enriched; a ps call for PID 1 fails the test.
	runner.EXPECT().Run(gomock.Any(), "ps", "-p", "2", "-o", "command=").
		Return([]byte("node app.js"), nil)
	runner.EXPECT().Run(gomock.Any(), "ps", "-p", "2", "-o", "lstart=").
		Return([]byte("Wed Jan  1 13:59:30 2025"), nil)
	runner.EXPECT().Run(gomock.Any(), "ps", "-p", "2", "-o", "user=").
		Return([]byte("dev"), nil)

	snap, err := Take(context.Background(), Options{
		Scanner:  port.NewLsofScanner(runner),
		Enricher: newEnricher(runner),
		Filter:   Filter{Exclude: []string{"Postgres"}},
		Now:      fixedClock,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Entries) != 1 || snap.Entries[0].Process.PID != 2 {
		t.Fatalf("expected only PID 2, got %+v", snap.Entries)
	}
}

func TestFilter_Match(t *testing.T) {
	node := port.NewPortEntry(3000, port.ProcessRecord{PID: 1, Name: "node", Command: "node /srv/api/server.js"})
	node.SetAppType(port.AppNodeJs)
	unclassified := port.NewPortEntry(8080, port.NewProcessRecord(2, "java"))

	nodeType := port.AppNodeJs
	javaType := port.AppJava

	tests := []struct {
		name   string
		filter Filter
		entry  port.PortEntry
		want   bool
	}{
		{"zero filter", Filter{}, node, true},
		{"port match", Filter{Port: 3000}, node, true},
		{"port mismatch", Filter{Port: 3001}, node, false},
		{"process by name", Filter{Process: "NODE"}, node, true},
		{"process by command", Filter{Process: "srv/api"}, node, true},
		{"process mismatch", Filter{Process: "ruby"}, node, false},
		{"type match", Filter{Type: &nodeType}, node, true},
		{"type mismatch", Filter{Type: &javaType}, node, false},
		{"type on unclassified", Filter{Type: &javaType}, unclassified, false},
		{"excluded", Filter{Exclude: []string{"Node"}}, node, false},
		{"exclude is exact", Filter{Exclude: []string{"no"}}, node, true},
		{"combined", Filter{Port: 3000, Process: "node", Type: &nodeType}, node, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Match(tt.entry); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTake_TypeAndProcessFilters(t *testing.T) {
	runner := &port.MultiMockCmdRunner{
		Responses: map[string]port.MockResponse{
			lsofKey: {Output: []byte("p1\ncnode\nn*:3000\np2\ncjava\nn*:8080\n")},

			"ps -p 1 -o command=": {Output: []byte("node index.js")},
			"ps -p 1 -o lstart=":  {Output: []byte("Wed Jan  1 13:00:00 2025")},
			"ps -p 1 -o user=":    {Output: []byte("dev")},
			"ps -p 2 -o command=": {Output: []byte("java -jar app.jar")},
			"ps -p 2 -o lstart=":  {Output: []byte("Wed Jan  1 13:00:00 2025")},
			"ps -p 2 -o user=":    {Output: []byte("dev")},
		},
	}

	javaType := port.AppJava
	snap, err := Take(context.Background(), Options{
		Scanner:  port.NewLsofScanner(runner),
		Enricher: newEnricher(runner),
		Filter:   Filter{Type: &javaType, Process: "app.jar"},
		Now:      fixedClock,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Entries) != 1 || snap.Entries[0].Port != 8080 {
		t.Fatalf("expected only the java listener, got %+v", snap.Entries)
	}
}
