package ops

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"
	"time"

	"github.com/vnykmshr/fanout/internal/testutil"
	"github.com/vnykmshr/fanout/pkg/parallel"
)

func args(pos []any, named map[string]any) parallel.Args {
	return parallel.Args{Positional: pos, Named: named}
}

func TestOps(t *testing.T) {
	tests := []struct {
		op   string
		elem string
		args parallel.Args
		want string
	}{
		{"identity", "Go", parallel.Args{}, "Go"},
		{"upper", "fan out", parallel.Args{}, "FAN OUT"},
		{"lower", "FAN Out", parallel.Args{}, "fan out"},
		{"reverse", "héllo", parallel.Args{}, "olléh"},
		{"len", "héllo", parallel.Args{}, "5"},
		{"sha256", "abc", parallel.Args{}, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{"repeat", "ab", args([]any{"3"}, nil), "ababab"},
		{"repeat", "ab", args([]any{"2"}, map[string]any{"sep": "-"}), "ab-ab"},
		{"repeat", "ab", args([]any{"0"}, nil), ""},
		{"wrap", "x", args(nil, map[string]any{"prefix": "[", "suffix": "]"}), "[x]"},
		{"sleep", "z", args(nil, map[string]any{"delay": "1ms"}), "z"},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			op, err := Lookup(tt.op)
			testutil.AssertNoError(t, err)

			got, err := op.Fn(context.Background(), tt.elem, tt.args)
			testutil.AssertNoError(t, err)
			testutil.AssertEqual(t, got, tt.want)
		})
	}
}

func TestOpErrors(t *testing.T) {
	tests := []struct {
		name string
		op   string
		args parallel.Args
	}{
		{"repeat without count", "repeat", parallel.Args{}},
		{"repeat with bad count", "repeat", args([]any{"many"}, nil)},
		{"repeat with negative count", "repeat", args([]any{"-1"}, nil)},
		{"sleep with bad delay", "sleep", args(nil, map[string]any{"delay": "soon"})},
		{"exec without command", "exec", parallel.Args{}},
		{"exec with missing binary", "exec", args([]any{"fanout-no-such-binary"}, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := Lookup(tt.op)
			testutil.AssertNoError(t, err)

			_, err = op.Fn(context.Background(), "x", tt.args)
			testutil.AssertError(t, err)
		})
	}
}

func TestSleepHonorsContext(t *testing.T) {
	op, _ := Lookup("sleep")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := op.Fn(ctx, "x", args(nil, map[string]any{"delay": "1h"}))
	testutil.AssertEqual(t, err, context.Canceled)
}

func TestExec(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires echo")
	}
	op, _ := Lookup("exec")

	got, err := op.Fn(context.Background(), "world", args([]any{"echo", "hello"}, nil))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, got, "hello world")
}

func TestHTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	op, _ := Lookup("http-status")
	named := map[string]any{"timeout": (5 * time.Second).String()}

	got, err := op.Fn(context.Background(), srv.URL+"/ok", args(nil, named))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, got, "204")

	got, err = op.Fn(context.Background(), srv.URL+"/missing", args(nil, named))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, got, "404")

	_, err = op.Fn(context.Background(), "://bad", args(nil, named))
	testutil.AssertError(t, err)
}

func TestLookupAndList(t *testing.T) {
	_, err := Lookup("nope")
	testutil.AssertError(t, err)

	list := List()
	if len(list) < 10 {
		t.Fatalf("expected at least 10 ops, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].Name >= list[i].Name {
			t.Errorf("ops not sorted: %q before %q", list[i-1].Name, list[i].Name)
		}
	}
}

func TestOpsRunThroughExecutor(t *testing.T) {
	op, _ := Lookup("upper")
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	got, err := parallel.New(op.Fn, []string{"a", "b", "c", "d"}).
		RunWithConfig(ctx, parallel.Config{CPUCount: 2, PreserveOrder: true})
	testutil.AssertNoError(t, err)
	testutil.AssertSliceEqual(t, got, []string{"A", "B", "C", "D"})
}
